package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect the prompt templates",
}

var promptsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the prompts file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		fmt.Println(cfg.Paths.Prompts)
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the templates in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		t, err := prompts.Load(cfg.Paths.Prompts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Using built-in templates:", err)
		}
		source := "built-in"
		if fileExists(cfg.Paths.Prompts) {
			source = cfg.Paths.Prompts
			if v, _ := prompts.FileVersion(source); v != "" {
				source += " (version " + v + ")"
			}
		}
		fmt.Println("Source:", source)
		fmt.Println()
		fmt.Println("[batch]")
		fmt.Println(t.Batch)
		fmt.Println()
		fmt.Println("[single]")
		fmt.Println(t.Single)
		return nil
	},
}

var promptsSyncCmd = &cobra.Command{
	Use:   "sync-version",
	Short: "Stamp the prompts file with the running version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		changed, err := prompts.SyncVersion(cfg.Paths.Prompts, version, timeNow())
		if err != nil {
			return err
		}
		if changed {
			fmt.Printf("Updated %s to version %s (backup: %s.backup)\n", cfg.Paths.Prompts, version, cfg.Paths.Prompts)
		} else {
			fmt.Println("Prompts file already up to date.")
		}
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsPathCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsSyncCmd)
}
