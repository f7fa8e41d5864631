package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/session"
	"github.com/aerladis/eflwizard/internal/store"
)

var exportsCmd = &cobra.Command{
	Use:   "exports",
	Short: "List recently written worksheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.Close()

		items, err := e.store.ExportRepo().RecentExports(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("query exports: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("No worksheets exported yet.")
			return nil
		}

		fmt.Printf("%-19s  %-22s  %-5s  %-28s  %s\n", "Timestamp", "Format", "Level", "Title", "Path")
		fmt.Println(strings.Repeat("─", 100))
		for _, x := range items {
			format := x.Format
			if x.Method != "" {
				format += " (" + x.Method + ")"
			}
			fmt.Printf("%-19s  %-22s  %-5s  %-28s  %s\n",
				x.Timestamp.Local().Format("2006-01-02 15:04:05"),
				format,
				x.Level,
				truncate(x.Title, 28),
				x.Path)
		}
		return nil
	},
}

func init() {
	exportsCmd.Flags().IntP("limit", "n", 20, "Number of exports to show")
}

func recordExport(ctx context.Context, e *env, sess *session.Session, path, format, method string) {
	err := e.store.ExportRepo().RecordExport(ctx, store.ExportData{
		SessionID:     sess.ID,
		Title:         sess.Title,
		Level:         sess.Level,
		Format:        format,
		Method:        method,
		Path:          path,
		ContentKey:    sess.Key(),
		QuestionCount: len(sess.Existing()),
	})
	if err != nil {
		e.logger.Warn("record export", zap.Error(err))
	}
}
