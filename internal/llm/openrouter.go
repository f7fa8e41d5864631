package llm

import (
	"errors"
	"net/http"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterModel   = "google/gemini-2.5-flash"

	openRouterReferer = "https://github.com/aerladis/eflwizard"
	openRouterTitle   = "eflwizard"
)

// OpenRouterProvider reaches many vendors through OpenRouter's
// OpenAI-compatible API. Model IDs are "vendor/model" and are not aliased.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenRouterModel
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterBaseURL
	}

	client := &http.Client{Transport: attribution{next: http.DefaultTransport}}
	return &OpenRouterProvider{OpenAIProvider: newOpenAICompatible(cfg.APIKey, model, base, client)}, nil
}

// attribution sets the headers OpenRouter uses to credit the calling app
// on its usage pages.
type attribution struct {
	next http.RoundTripper
}

func (a attribution) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("HTTP-Referer", openRouterReferer)
	r.Header.Set("X-Title", openRouterTitle)
	return a.next.RoundTrip(r)
}
