package cmd

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/selfupdate"
)

// version is set via -ldflags at build time.
var version = selfupdate.DevVersion

var timeNow = time.Now

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("eflwizard %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
	},
}
