package ocr

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/aerladis/eflwizard/internal/proc"
)

const CLIEngineName = "tesseract-cli"

// CLIEngine runs the tesseract binary on a temporary PNG.
type CLIEngine struct {
	Runner proc.Runner
	// Binary defaults to "tesseract" on PATH.
	Binary string
}

func (e *CLIEngine) Name() string { return CLIEngineName }

func (e *CLIEngine) runner() proc.Runner {
	if e.Runner == nil {
		return proc.ExecRunner{}
	}
	return e.Runner
}

func (e *CLIEngine) binary() string {
	if e.Binary == "" {
		return "tesseract"
	}
	return e.Binary
}

func (e *CLIEngine) Recognize(ctx context.Context, in Input) (string, error) {
	r := e.runner()
	if _, err := r.LookPath(e.binary()); err != nil {
		return "", fmt.Errorf("Tesseract not found. Please install Tesseract OCR: %w", err)
	}

	f, err := os.CreateTemp("", "eflwizard_ocr_*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(in.Image); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	args := []string{f.Name(), "stdout", "-l", lang(in.Language), "--psm", strconv.Itoa(psm(in.PSM))}
	if in.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(in.DPI))
	}
	out, err := r.Run(ctx, e.binary(), args...)
	if err != nil {
		return "", fmt.Errorf("Tesseract failed: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func lang(l string) string {
	if l == "" {
		return "eng"
	}
	return l
}

func psm(n int) int {
	if n <= 0 {
		return 3
	}
	return n
}
