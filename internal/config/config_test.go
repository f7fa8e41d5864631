package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, dir string) *Config {
	t.Helper()
	cfg, err := Load(LoadOptions{SearchPaths: []string{dir}, SkipDotEnv: true})
	require.NoError(t, err)
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg := load(t, dir)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "B2", cfg.Generation.Level)
	assert.Equal(t, "Upper", cfg.Generation.Tier)
	assert.Equal(t, "Standard", cfg.Generation.PromptStyle)
	assert.True(t, cfg.Generation.QualityValidation)
	assert.Equal(t, 5, cfg.OCR.MaxPages)
	assert.Equal(t, 150, cfg.OCR.DPI)
	assert.Equal(t, "auto", cfg.PDF.Method)
	assert.Equal(t, 60*time.Second, cfg.PDF.Timeout)
	assert.Equal(t, 2.2, cfg.Preview.Zoom)
	assert.Equal(t, DefaultManifestURL, cfg.Update.ManifestURL)
	assert.Equal(t, "@every 30m", cfg.Update.Schedule)
	assert.Equal(t, 20*time.Second, cfg.Update.Timeout)

	dataDir := filepath.Join(dir, "eflwizard")
	assert.Equal(t, dataDir, cfg.Paths.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "prompts.ini"), cfg.Paths.Prompts)
	assert.Equal(t, filepath.Join(dataDir, "feedback.ini"), cfg.Paths.Feedback)
	assert.Equal(t, filepath.Join(dataDir, "preview"), cfg.Preview.CacheDir)
	assert.Empty(t, cfg.File)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
env: production
generation:
  level: C1
  tier: Lower
ocr:
  max_pages: 3
paths:
  data_dir: ` + dir + `
  template: unit.docx
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "eflwizard.yaml"), []byte(yaml), 0o644))
	t.Setenv("EFLWIZARD_GENERATION_TIER", "Neutral")
	t.Setenv("EFLWIZARD_PDF_METHOD", "libreoffice")

	cfg := load(t, dir)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "C1", cfg.Generation.Level)
	assert.Equal(t, "Neutral", cfg.Generation.Tier, "env overrides file")
	assert.Equal(t, "libreoffice", cfg.PDF.Method)
	assert.Equal(t, 3, cfg.OCR.MaxPages)
	assert.Equal(t, filepath.Join(dir, "unit.docx"), cfg.Paths.Template)
	assert.Equal(t, filepath.Join(dir, "eflwizard.yaml"), cfg.File)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "nope.yaml"), SkipDotEnv: true})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"level", "EFLWIZARD_GENERATION_LEVEL", "D1"},
		{"tier", "EFLWIZARD_GENERATION_TIER", "Middle"},
		{"pdf method", "EFLWIZARD_PDF_METHOD", "printer"},
		{"dpi", "EFLWIZARD_OCR_DPI", "0"},
		{"pages", "EFLWIZARD_OCR_MAX_PAGES", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.val)
			_, err := Load(LoadOptions{SearchPaths: []string{dir}, SkipDotEnv: true})
			require.Error(t, err)
		})
	}
}

func TestEngagementVeryHighAccepted(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("EFLWIZARD_GENERATION_ENGAGEMENT", "Very High")
	cfg, err := Load(LoadOptions{SearchPaths: []string{dir}, SkipDotEnv: true})
	require.NoError(t, err)
	assert.Equal(t, "Very High", cfg.Generation.Engagement)
}

func TestLLMConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY", "OLLAMA_HOST"} {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	t.Run("no provider", func(t *testing.T) {
		cfg := load(t, dir)
		_, err := cfg.LLMConfig()
		require.Error(t, err)
	})

	t.Run("discovered gemini", func(t *testing.T) {
		t.Setenv("GEMINI_API_KEY", "g-key")
		cfg := load(t, dir)
		lc, err := cfg.LLMConfig()
		require.NoError(t, err)
		assert.Equal(t, "gemini", lc.Provider)
		assert.Equal(t, "g-key", lc.Gemini.APIKey)
		assert.Equal(t, "gemini-2.5-flash", lc.Gemini.Model)
		assert.Equal(t, 60*time.Second, lc.Timeout)
	})

	t.Run("explicit mock", func(t *testing.T) {
		t.Setenv("EFLWIZARD_LLM_PROVIDER", "mock")
		cfg := load(t, dir)
		lc, err := cfg.LLMConfig()
		require.NoError(t, err)
		assert.Equal(t, "mock", lc.Provider)
	})
}
