package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects a vendor and carries every vendor's settings, so switching
// provider in the config file needs no other change.
type Config struct {
	// Provider is one of "gemini", "openai", "anthropic", "openrouter",
	// "ollama" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Ollama     OllamaConfig
	Retry      RetryConfig

	// Timeout bounds one Generate call including its retries.
	Timeout time.Duration

	// CaptureBodies stores prompts and answers with each event (--debug).
	CaptureBodies bool
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OllamaConfig struct {
	Model   string
	BaseURL string
}

type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-2.5-flash"},
		OpenRouter: OpenRouterConfig{Model: defaultOpenRouterModel},
		Ollama:     OllamaConfig{Model: "llama3.1", BaseURL: defaultOllamaBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// discovery lists the environment variables DiscoverConfig checks, first
// match wins.
var discovery = []struct {
	env      string
	provider string
	apply    func(*Config, string)
}{
	{"GEMINI_API_KEY", "gemini", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"OPENAI_API_KEY", "openai", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"OLLAMA_HOST", "ollama", func(c *Config, v string) { c.Ollama.BaseURL = normalizeOllamaHost(v) }},
}

// DiscoverConfig picks a provider from the vendors' standard environment
// variables when the config file names none. It reports false if none is set.
func DiscoverConfig() (Config, bool) {
	for _, d := range discovery {
		if v := os.Getenv(d.env); v != "" {
			cfg := DefaultConfig()
			cfg.Provider = d.provider
			d.apply(&cfg, v)
			return cfg, true
		}
	}
	return Config{}, false
}

// Validate checks that the selected provider has what it needs to connect.
func (c Config) Validate() error {
	missing := func(setting string) error {
		return fmt.Errorf("%s is required for the %s provider", setting, c.Provider)
	}
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return missing("EFLWIZARD_LLM_GEMINI_API_KEY")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return missing("EFLWIZARD_LLM_OPENAI_API_KEY")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return missing("EFLWIZARD_LLM_ANTHROPIC_API_KEY")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return missing("EFLWIZARD_LLM_OPENROUTER_API_KEY")
		}
	case "ollama":
		if c.Ollama.BaseURL == "" {
			return missing("an Ollama base URL")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
