package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/selfupdate"
	"github.com/aerladis/eflwizard/internal/store"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update eflwizard to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		checkOnly, _ := cmd.Flags().GetBool("check")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var repo store.UpdateRepo
		if dbPath, err := resolveDBPath(cfg); err == nil {
			if st, err := store.Open(dbPath); err == nil {
				defer st.Close()
				repo = st.UpdateRepo()
			}
		}

		checker := newChecker(cfg)
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		rel, err := checker.Check(ctx)
		if rec, ok := selfupdate.CheckRecord(version, rel, err); ok && repo != nil {
			if rerr := repo.RecordUpdateCheck(ctx, rec); rerr != nil {
				fmt.Fprintln(os.Stderr, "record update check:", rerr)
			}
		}
		switch {
		case errors.Is(err, selfupdate.ErrDevBuild):
			fmt.Println("Cannot update a development build. Install a release build first.")
			return nil
		case errors.Is(err, selfupdate.ErrAlreadyLatest):
			fmt.Printf("Already running the latest version (%s).\n", version)
			return nil
		case err != nil:
			return fmt.Errorf("check for updates: %w", err)
		}

		fmt.Printf("Version %s is available (running %s).\n", rel.Manifest.Version, rel.Current)
		if notes := rel.Manifest.Notes.String(); notes != "" {
			fmt.Println()
			fmt.Println(notes)
			fmt.Println()
		}
		if checkOnly {
			return nil
		}

		var last string
		err = selfupdate.NewUpdater(checker).Update(ctx, rel, func(p selfupdate.Progress) {
			line := p.Message
			if p.Stage == "download" && p.Read > 0 {
				line = selfupdate.ProgressText(p)
			}
			if line != "" && line != last {
				fmt.Println(line)
				last = line
			}
		})
		if err == nil {
			return nil
		}
		if os.IsPermission(err) {
			return fmt.Errorf("%w\n\nTry running: sudo eflwizard update", err)
		}
		return err
	},
}

func init() {
	updateCmd.Flags().Bool("check", false, "Only report whether an update is available")
}
