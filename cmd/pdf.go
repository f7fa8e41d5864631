package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/pdfconv"
)

var pdfMethodsCmd = &cobra.Command{
	Use:   "pdf-methods",
	Short: "Show which PDF conversion methods are available",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		reg := pdfconv.New(pdfconv.Options{Timeout: cfg.PDF.Timeout})

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		statuses := reg.Availability(ctx)

		fmt.Printf("%-3s  %-14s  %s\n", "", "Method", "Detail")
		fmt.Println(strings.Repeat("─", 60))
		for _, s := range statuses {
			mark, detail := "✓", "available"
			if s.Err != nil {
				mark, detail = "✗", s.Err.Error()
			}
			fmt.Printf("%-3s  %-14s  %s\n", mark, s.Label, detail)
		}

		available, missing := pdfconv.Split(statuses)
		fmt.Println()
		fmt.Printf("Configured: %s\n", cfg.PDF.Method)
		fmt.Printf("Available:  %s\n", joinOrNone(available))
		fmt.Printf("Missing:    %s\n", joinOrNone(missing))
		return nil
	},
}

func joinOrNone(s []string) string {
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, ", ")
}
