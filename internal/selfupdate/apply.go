package selfupdate

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// applyUpdate writes the new binary beside targetPath and renames it over
// the target, keeping the original file mode.
func applyUpdate(binaryData []byte, targetPath string, expectedHash []byte) error {
	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("stat target: %w", err)
	}
	originalMode := info.Mode()

	tmpDir, err := os.MkdirTemp(filepath.Dir(targetPath), "."+AppName+"-update-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	tmpFile := filepath.Join(tmpDir, AppName+"-new")
	if err := os.WriteFile(tmpFile, binaryData, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	written, err := os.ReadFile(tmpFile)
	if err != nil {
		return fmt.Errorf("re-read temp file: %w", err)
	}
	writtenHash := sha256.Sum256(written)
	if !bytes.Equal(writtenHash[:], expectedHash) {
		return fmt.Errorf("%w: temp file changed after write", ErrChecksum)
	}

	if err := os.Rename(tmpFile, targetPath); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	if err := os.Chmod(targetPath, originalMode); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	return nil
}

// A running Windows executable cannot be replaced in place, so the new
// binary is staged as <exe>.new and a detached batch script swaps it in
// once the process exits.
const replaceScript = `@echo off
timeout /t 3 /nobreak >nul 2>&1
:retry
if exist "{{target}}" (
    del /f /q "{{target}}" >nul 2>&1
    if errorlevel 1 (
        timeout /t 2 /nobreak >nul 2>&1
        goto retry
    )
)
move "{{new}}" "{{target}}" >nul 2>&1
if errorlevel 1 (
    timeout /t 2 /nobreak >nul 2>&1
    goto retry
)
del /f /q "{{lock}}" >nul 2>&1
del /f /q "%~f0" >nul 2>&1
`

func applyWindows(binaryData []byte, target, scriptDir string, start func(string) error) (err error) {
	lock := target + ".update_lock"
	newPath := target + ".new"

	if _, err := os.Stat(lock); err == nil {
		return ErrInProgress
	}
	if err := os.WriteFile(lock, []byte("Update started at "+time.Now().Format(time.DateTime)), 0o644); err != nil {
		return fmt.Errorf("create lock: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(lock)
		}
	}()

	for attempt := 1; ; attempt++ {
		err = os.WriteFile(newPath, binaryData, 0o755)
		if err == nil {
			break
		}
		if attempt == 3 {
			return fmt.Errorf("stage %s: %w", filepath.Base(newPath), err)
		}
		time.Sleep(time.Second)
	}
	if _, err = os.Stat(newPath); err != nil {
		return errors.New("Failed to create .new file")
	}

	script := fillScript(replaceScript, map[string]string{"target": target, "new": newPath, "lock": lock})
	bat := filepath.Join(scriptDir, fmt.Sprintf("update_%d.bat", os.Getpid()))
	if err = os.WriteFile(bat, []byte(script), 0o644); err != nil {
		return fmt.Errorf("write update script: %w", err)
	}
	if err = start(bat); err != nil {
		return fmt.Errorf("start update script: %w", err)
	}
	return nil
}

func fillScript(tmpl string, vars map[string]string) string {
	for k, v := range vars {
		tmpl = strings.ReplaceAll(tmpl, "{{"+k+"}}", v)
	}
	return tmpl
}

func startDetached(script string) error {
	cmd := exec.Command("cmd.exe", "/C", script)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
