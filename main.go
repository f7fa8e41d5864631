package main

import (
	"os"

	"github.com/aerladis/eflwizard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
