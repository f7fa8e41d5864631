package prompts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/ini.v1"
)

var (
	versionRe = regexp.MustCompile(`# Version:\s*([^\n]+)`)
	updatedRe = regexp.MustCompile(`# Last Updated:\s*[^\n]+`)
)

// Load reads [batch] and [single] templates from an ini file. A missing
// file, section or key falls back to the built-in template.
func Load(path string) (Templates, error) {
	t := DefaultTemplates()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read prompts: %w", err)
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		AllowPythonMultilineValues: true,
		SpaceBeforeInlineComment:   true,
		IgnoreInlineComment:        true,
		ReaderBufferSize:           64 << 10,
	}, data)
	if err != nil {
		return t, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	if v := templateValue(f, "batch"); v != "" {
		t.Batch = v
	}
	if v := templateValue(f, "single"); v != "" {
		t.Single = v
	}
	return t, nil
}

func templateValue(f *ini.File, section string) string {
	if !f.HasSection(section) {
		return ""
	}
	key, err := f.Section(section).GetKey("template")
	if err != nil {
		return ""
	}
	lines := strings.Split(key.String(), "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimLeft(lines[i], " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// FileVersion returns the "# Version:" header, or "" when absent.
func FileVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	m := versionRe.FindSubmatch(data)
	if m == nil {
		return "", nil
	}
	return strings.TrimSpace(string(m[1])), nil
}

// SyncVersion rewrites the version and last-updated headers to match
// appVersion, keeping the previous content in path+".backup". It reports
// whether the file changed. Files without a version header are left alone.
func SyncVersion(path, appVersion string, now time.Time) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read prompts: %w", err)
	}
	m := versionRe.FindSubmatch(data)
	if m == nil || strings.TrimSpace(string(m[1])) == appVersion {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path+".backup", data, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write prompts backup: %w", err)
	}

	out := versionRe.ReplaceAllLiteral(data, []byte("# Version: "+appVersion))
	out = updatedRe.ReplaceAllLiteral(out, []byte("# Last Updated: "+now.Format("2006-01-02")))
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("write prompts: %w", err)
	}
	return true, nil
}
