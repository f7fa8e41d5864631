// Package proc runs external programs behind an interface tests can fake.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external programs.
type Runner interface {
	LookPath(name string) (string, error)
	// Run returns combined output. A non-zero exit is an error that
	// includes the trimmed output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err == nil {
		return out.Bytes(), nil
	}
	if ctx.Err() != nil {
		return out.Bytes(), fmt.Errorf("%s: %w", name, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			msg = "unknown error"
		}
		return out.Bytes(), fmt.Errorf("%s exited with %d: %s", name, exitErr.ExitCode(), msg)
	}
	return out.Bytes(), fmt.Errorf("run %s: %w", name, err)
}
