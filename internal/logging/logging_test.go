package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "eflwizard.log")
	l, err := New(Options{Env: "production", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hello")
	l.Debug("hidden")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("log = %q, want JSON entry for hello", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Errorf("debug entry written without Debug option")
	}
}

func TestNew_Debug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	l, err := New(Options{Debug: true, File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("visible")
	_ = l.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "visible") {
		t.Errorf("debug entry missing: %q", data)
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
