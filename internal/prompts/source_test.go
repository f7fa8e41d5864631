package prompts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSourceReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.ini")
	if err := os.WriteFile(path, []byte("[batch]\ntemplate = first {unit_title}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewSource(path, nil)
	if got := s.Templates().Batch; got != "first {unit_title}" {
		t.Fatalf("Batch = %q", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Watch(ctx); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer s.Close()

	if err := os.WriteFile(path, []byte("[batch]\ntemplate = second {unit_title}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if strings.HasPrefix(s.Templates().Batch, "second") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("templates not reloaded, Batch = %q", s.Templates().Batch)
}

func TestSourceMissingFile(t *testing.T) {
	s := NewSource(filepath.Join(t.TempDir(), "missing.ini"), nil)
	if s.Templates() != DefaultTemplates() {
		t.Error("expected defaults for a missing file")
	}
}
