package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/feedback"
	"github.com/aerladis/eflwizard/internal/store"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect why questions were regenerated",
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded regeneration reasons",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		fromLog, _ := cmd.Flags().GetBool("log")

		if fromLog {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			entries, err := feedback.NewLog(cfg.Paths.Feedback).Entries()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("No feedback logged yet.")
				return nil
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			for _, e := range entries {
				fmt.Printf("%s\n  Q: %s\n  Why: %s\n", e.Key, e.Question, orDash(e.Reason))
			}
			return nil
		}

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		items, err := e.store.FeedbackRepo().ListFeedback(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query feedback: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No feedback recorded yet.")
			return nil
		}

		fmt.Printf("%-19s  %-3s  %-50s  %s\n", "Timestamp", "#", "Question", "Reason")
		fmt.Println(strings.Repeat("─", 100))
		for _, f := range items {
			fmt.Printf("%-19s  %-3d  %-50s  %s\n",
				f.Timestamp.Local().Format("2006-01-02 15:04:05"),
				f.QuestionIndex+1,
				truncate(f.Question, 50),
				orDash(f.Reason))
		}
		return nil
	},
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func init() {
	feedbackListCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	feedbackListCmd.Flags().Bool("log", false, "Read the feedback ini log instead of the database")
	feedbackCmd.AddCommand(feedbackListCmd)
}
