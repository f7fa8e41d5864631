package cmd

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/aerladis/eflwizard/internal/config"
)

func testEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("EFLWIZARD_PATHS_DATA_DIR", t.TempDir())
	cfg, err := config.Load(config.LoadOptions{SearchPaths: []string{t.TempDir()}, SkipDotEnv: true})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return &env{cfg: cfg}
}

func unitCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	addUnitFlags(c)
	if err := c.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return c
}

func TestSessionFromFlags(t *testing.T) {
	e := testEnv(t)
	c := unitCommand(t, "--title", "Travel", "--level", "c1", "--tier", "lower", "--vocab", "journey, fare")

	sess, err := sessionFromFlags(c, e)
	if err != nil {
		t.Fatalf("sessionFromFlags: %v", err)
	}
	if sess.Title != "Travel" || sess.Level != "C1" || sess.Tier != "Lower" {
		t.Errorf("unexpected session %q %q %q", sess.Title, sess.Level, sess.Tier)
	}
	if got := sess.Inputs().Vocab; len(got) != 2 || got[1] != "fare" {
		t.Errorf("unexpected vocab %v", got)
	}
}

func TestSessionFromFlagsDefaults(t *testing.T) {
	e := testEnv(t)
	sess, err := sessionFromFlags(unitCommand(t), e)
	if err != nil {
		t.Fatalf("sessionFromFlags: %v", err)
	}
	if sess.Level != "B2" || sess.Tier != "Upper" {
		t.Errorf("expected configured defaults, got %q %q", sess.Level, sess.Tier)
	}
	if sess.RequireTitle() == nil {
		t.Error("expected missing title to be reported")
	}
}

func TestSessionFromFlagsRejectsBadValues(t *testing.T) {
	e := testEnv(t)
	tests := []struct {
		name string
		args []string
	}{
		{"level", []string{"--level", "D1"}},
		{"tier", []string{"--tier", "middle"}},
		{"topics file", []string{"--topics-file", filepath.Join(t.TempDir(), "missing.txt")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sessionFromFlags(unitCommand(t, tt.args...), e); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestWriteWorksheetRejectsUnknownExtension(t *testing.T) {
	e := testEnv(t)
	sess := newSession(e.cfg)
	sess.SetTitle("Travel")
	if err := writeWorksheet(t.Context(), e, sess, filepath.Join(t.TempDir(), "out.txt"), ""); err == nil {
		t.Error("expected unsupported output error")
	}
}

func TestTUILogPath(t *testing.T) {
	e := testEnv(t)
	want := filepath.Join(e.cfg.Paths.DataDir, "logs", "eflwizard.log")
	if got := tuiLogPath(e.cfg); got != want {
		t.Errorf("tuiLogPath = %q, want %q", got, want)
	}
}
