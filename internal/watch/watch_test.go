package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestWatcherReportsWatchedFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "prompts.ini")
	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(target, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 8)
	w, err := New([]string{target}, Options{
		Debounce: 50 * time.Millisecond,
		OnChange: func(p string) { changed <- p },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(other, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte("b"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case p := <-changed:
		if filepath.Base(p) != "prompts.ini" {
			t.Errorf("changed = %q, want prompts.ini", p)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	// The burst of writes collapses into one notification.
	select {
	case p := <-changed:
		t.Errorf("unexpected second notification for %q", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStopTwice(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "f")}, Options{OnChange: func(string) {}})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}

func TestNewRequiresCallback(t *testing.T) {
	if _, err := New(nil, Options{}); err == nil {
		t.Fatal("expected error without OnChange")
	}
}
