package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "eflwizard",
	Short: "Discussion question generator for EFL worksheets",
	Long: `EFL Wizard writes fifteen discussion questions for a coursebook unit,
pitched at a CEFR level, and fills them into a DOCX worksheet template.

Run without a subcommand to open the editor.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: search ./eflwizard.yaml and the user config dir)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EFLWIZARD_DB_PATH)")
	rootCmd.PersistentFlags().Bool("debug", false, "Verbose logging and full prompt capture")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(ocrCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(pdfMethodsCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(exportsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}
