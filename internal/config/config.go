// Package config loads eflwizard settings from an optional YAML file,
// .env files and EFLWIZARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aerladis/eflwizard/internal/llm"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "EFLWIZARD"

// DefaultManifestURL is where release manifests are published.
const DefaultManifestURL = "https://raw.githubusercontent.com/aerladis/eflai/main/manifest.json"

var (
	Levels      = []string{"A1", "A2", "B1", "B1+", "B2", "C1", "C2"}
	Tiers       = []string{"Upper", "Neutral", "Lower"}
	Styles      = []string{"Standard", "Concise", "Detailed", "Creative"}
	Blooms      = []string{"Auto", "Remember", "Understand", "Apply", "Analyze", "Evaluate", "Create"}
	Engagements = []string{"Auto", "Low", "Medium", "High", "Very High"}
	Strictness  = []string{"Auto", "Lenient", "Moderate", "Strict"}
	PDFMethods  = []string{"auto", "selfcontained", "docx2pdf", "word", "libreoffice"}
	OCREngines  = []string{"auto", "tesseract-cli", "gosseract"}
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env        string     `mapstructure:"env"`     // local or production
	Debug      bool       `mapstructure:"debug"`   // verbose logging and full prompt capture
	DBPath     string     `mapstructure:"db_path"` // empty means store.DefaultDBPath
	LLM        LLM        `mapstructure:"llm"`
	Paths      Paths      `mapstructure:"paths"`
	Generation Generation `mapstructure:"generation"`
	OCR        OCR        `mapstructure:"ocr"`
	PDF        PDF        `mapstructure:"pdf"`
	Preview    Preview    `mapstructure:"preview"`
	Update     Update     `mapstructure:"update"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// LLM selects and configures the model provider.
type LLM struct {
	Provider   string        `mapstructure:"provider"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Anthropic  Vendor        `mapstructure:"anthropic"`
	OpenAI     Vendor        `mapstructure:"openai"`
	Gemini     Vendor        `mapstructure:"gemini"`
	OpenRouter Vendor        `mapstructure:"openrouter"`
	Ollama     Vendor        `mapstructure:"ollama"`
	Retry      Retry         `mapstructure:"retry"`
}

// Vendor holds per-provider credentials.
type Vendor struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type Retry struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
}

// Paths locates user-editable files. Relative paths resolve against DataDir.
type Paths struct {
	DataDir  string `mapstructure:"data_dir"`
	Prompts  string `mapstructure:"prompts"`
	Feedback string `mapstructure:"feedback"`
	Template string `mapstructure:"template"`
}

// Generation holds the defaults for a new editing session.
type Generation struct {
	Level             string  `mapstructure:"level"`
	Tier              string  `mapstructure:"tier"`
	PromptStyle       string  `mapstructure:"prompt_style"`
	QualityValidation bool    `mapstructure:"quality_validation"`
	Blooms            string  `mapstructure:"blooms"`
	Engagement        string  `mapstructure:"engagement"`
	Academic          bool    `mapstructure:"academic_background"`
	Naturalness       bool    `mapstructure:"naturalness"`
	Strictness        string  `mapstructure:"strictness"`
	Structured        bool    `mapstructure:"structured"`
	Temperature       float64 `mapstructure:"temperature"`
	MaxTokens         int     `mapstructure:"max_tokens"`
}

type OCR struct {
	Engine      string `mapstructure:"engine"`
	Language    string `mapstructure:"language"`
	PSM         int    `mapstructure:"psm"`
	DPI         int    `mapstructure:"dpi"`
	MaxPages    int    `mapstructure:"max_pages"`
	Parallelism int    `mapstructure:"parallelism"`
}

type PDF struct {
	Method  string        `mapstructure:"method"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Preview struct {
	Zoom     float64 `mapstructure:"zoom"`
	DPR      float64 `mapstructure:"dpr"`
	CacheDir string  `mapstructure:"cache_dir"`
}

type Update struct {
	ManifestURL    string        `mapstructure:"manifest_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	AutoCheck      bool          `mapstructure:"auto_check"`
	Schedule       string        `mapstructure:"schedule"`
	CheckOnStartup bool          `mapstructure:"check_on_startup"`
}

// LoadOptions tune where Load looks.
type LoadOptions struct {
	// File is an explicit config file. When set it must exist.
	File string
	// SearchPaths replaces the default search path list when non-empty.
	SearchPaths []string
	// SkipDotEnv disables .env loading, used by tests.
	SkipDotEnv bool
}

// Load reads configuration from config files and environment variables.
func Load(opts LoadOptions) (*Config, error) {
	if !opts.SkipDotEnv {
		loadDotEnv()
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName("eflwizard")
		v.SetConfigType("yaml")
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = defaultSearchPaths()
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if cfg.Paths.DataDir == "" {
		cfg.Paths.DataDir = DefaultDataDir()
	}
	cfg.Paths.Prompts = cfg.resolve(cfg.Paths.Prompts)
	cfg.Paths.Feedback = cfg.resolve(cfg.Paths.Feedback)
	if cfg.Paths.Template != "" {
		cfg.Paths.Template = cfg.resolve(cfg.Paths.Template)
	}
	if cfg.Preview.CacheDir == "" {
		cfg.Preview.CacheDir = filepath.Join(cfg.Paths.DataDir, "preview")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("debug", false)
	v.SetDefault("db_path", "")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", "claude-haiku")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", "google/gemini-2.5-flash")
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.ollama.model", "llama3.1")
	v.SetDefault("llm.ollama.base_url", "")
	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_wait", "1s")
	v.SetDefault("llm.retry.max_wait", "10s")

	v.SetDefault("paths.data_dir", "")
	v.SetDefault("paths.prompts", "prompts.ini")
	v.SetDefault("paths.feedback", "feedback.ini")
	v.SetDefault("paths.template", "")

	v.SetDefault("generation.level", "B2")
	v.SetDefault("generation.tier", "Upper")
	v.SetDefault("generation.prompt_style", "Standard")
	v.SetDefault("generation.quality_validation", true)
	v.SetDefault("generation.blooms", "Auto")
	v.SetDefault("generation.engagement", "Auto")
	v.SetDefault("generation.academic_background", false)
	v.SetDefault("generation.naturalness", true)
	v.SetDefault("generation.strictness", "Auto")
	v.SetDefault("generation.structured", false)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.max_tokens", 2048)

	v.SetDefault("ocr.engine", "auto")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.psm", 3)
	v.SetDefault("ocr.dpi", 150)
	v.SetDefault("ocr.max_pages", 5)
	v.SetDefault("ocr.parallelism", 2)

	v.SetDefault("pdf.method", "auto")
	v.SetDefault("pdf.timeout", "60s")

	v.SetDefault("preview.zoom", 2.2)
	v.SetDefault("preview.dpr", 1.0)
	v.SetDefault("preview.cache_dir", "")

	v.SetDefault("update.manifest_url", DefaultManifestURL)
	v.SetDefault("update.timeout", "20s")
	v.SetDefault("update.auto_check", true)
	v.SetDefault("update.schedule", "@every 30m")
	v.SetDefault("update.check_on_startup", true)
}

// Validate rejects values the rest of the program cannot act on.
func (c *Config) Validate() error {
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"generation.level", c.Generation.Level, Levels},
		{"generation.tier", c.Generation.Tier, Tiers},
		{"generation.prompt_style", c.Generation.PromptStyle, Styles},
		{"generation.blooms", c.Generation.Blooms, Blooms},
		{"generation.engagement", c.Generation.Engagement, Engagements},
		{"generation.strictness", c.Generation.Strictness, Strictness},
		{"pdf.method", c.PDF.Method, PDFMethods},
		{"ocr.engine", c.OCR.Engine, OCREngines},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("invalid %s %q (allowed: %s)", ch.name, ch.value, strings.Join(ch.allowed, ", "))
		}
	}
	if c.OCR.DPI <= 0 {
		return fmt.Errorf("invalid ocr.dpi %d", c.OCR.DPI)
	}
	if c.OCR.MaxPages < 1 {
		return fmt.Errorf("invalid ocr.max_pages %d", c.OCR.MaxPages)
	}
	if c.Preview.Zoom <= 0 || c.Preview.DPR <= 0 {
		return fmt.Errorf("invalid preview zoom/dpr %.2f/%.2f", c.Preview.Zoom, c.Preview.DPR)
	}
	return nil
}

// LLMConfig maps the llm section onto the provider factory's config. When
// no provider is named, the first standard API key found in the
// environment decides.
func (c *Config) LLMConfig() (llm.Config, error) {
	cfg := llm.DefaultConfig()
	provider := c.LLM.Provider
	if provider == "" {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			return llm.Config{}, llm.ErrNoProvider
		}
		cfg = discovered
		provider = discovered.Provider
	}
	cfg.Provider = provider

	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&cfg.Anthropic.APIKey, c.LLM.Anthropic.APIKey)
	overlay(&cfg.Anthropic.Model, c.LLM.Anthropic.Model)
	overlay(&cfg.OpenAI.APIKey, c.LLM.OpenAI.APIKey)
	overlay(&cfg.OpenAI.Model, c.LLM.OpenAI.Model)
	overlay(&cfg.OpenAI.BaseURL, c.LLM.OpenAI.BaseURL)
	overlay(&cfg.Gemini.APIKey, c.LLM.Gemini.APIKey)
	overlay(&cfg.Gemini.Model, c.LLM.Gemini.Model)
	overlay(&cfg.OpenRouter.APIKey, c.LLM.OpenRouter.APIKey)
	overlay(&cfg.OpenRouter.Model, c.LLM.OpenRouter.Model)
	overlay(&cfg.OpenRouter.BaseURL, c.LLM.OpenRouter.BaseURL)
	overlay(&cfg.Ollama.Model, c.LLM.Ollama.Model)
	overlay(&cfg.Ollama.BaseURL, c.LLM.Ollama.BaseURL)

	if c.LLM.Timeout > 0 {
		cfg.Timeout = c.LLM.Timeout
	}
	if c.LLM.Retry.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = c.LLM.Retry.MaxAttempts
	}
	if c.LLM.Retry.InitialWait > 0 {
		cfg.Retry.InitialWait = c.LLM.Retry.InitialWait
	}
	if c.LLM.Retry.MaxWait > 0 {
		cfg.Retry.MaxWait = c.LLM.Retry.MaxWait
	}

	if err := cfg.Validate(); err != nil {
		return llm.Config{}, err
	}
	return cfg, nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.DataDir, p)
}

// DefaultDataDir returns $XDG_DATA_HOME/eflwizard, falling back to
// ~/.local/share/eflwizard.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "eflwizard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "eflwizard")
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "eflwizard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "eflwizard")
}

func defaultSearchPaths() []string {
	paths := []string{"."}
	if dir := configDir(); dir != "" {
		paths = append(paths, dir)
	}
	return paths
}

// loadDotEnv reads .env from the working directory and the config dir.
// godotenv never overrides variables that are already set.
func loadDotEnv() {
	candidates := []string{".env"}
	if dir := configDir(); dir != "" {
		candidates = append(candidates, filepath.Join(dir, ".env"))
	}
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}
}
