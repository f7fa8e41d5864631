package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestOllamaProvider_Generate(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.1",
			"response":          "1. Do you cook at home?\n2. What is your favourite dish?",
			"done_reason":       "stop",
			"prompt_eval_count": 12,
			"eval_count":        34,
		})
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(OllamaConfig{Model: "llama3.1", BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		System:      "You write ESL discussion questions.",
		Messages:    []Message{{Role: RoleUser, Content: "Write questions."}},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if got.Stream {
		t.Error("stream must be false")
	}
	if got.Prompt != "Write questions." || got.System != "You write ESL discussion questions." || got.Options.NumPredict != 200 {
		t.Errorf("request body = %+v", got)
	}
	if resp.Usage.TotalTokens != 46 {
		t.Errorf("usage = %+v", resp.Usage)
	}
	if resp.Text != "1. Do you cook at home?\n2. What is your favourite dish?" {
		t.Errorf("text = %q", resp.Text)
	}
}

func TestOllamaProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(t *testing.T, err error)
	}{
		{"busy", http.StatusTooManyRequests, func(t *testing.T, err error) {
			var rl *ErrRateLimit
			if !errors.As(err, &rl) || rl.RetryAfter != 2*time.Second {
				t.Fatalf("expected ErrRateLimit with 2s, got %T (%v)", err, err)
			}
		}},
		{"crashed", http.StatusInternalServerError, func(t *testing.T, err error) {
			var unavail *ErrProviderUnavailable
			if !errors.As(err, &unavail) {
				t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
			}
		}},
		{"model not pulled", http.StatusNotFound, func(t *testing.T, err error) {
			var rejected *ErrRejected
			if !errors.As(err, &rejected) || !strings.Contains(err.Error(), "model \"llama3.1\" not found") {
				t.Fatalf("expected ErrRejected naming the model, got %T (%v)", err, err)
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "2")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":"model \"llama3.1\" not found"}`)
			}))
			defer srv.Close()

			p, _ := NewOllamaProvider(OllamaConfig{Model: "llama3.1", BaseURL: srv.URL})
			_, err := p.Generate(context.Background(), Prompt("Topic: food", 10, 0))
			tt.check(t, err)
		})
	}
}

func TestOllamaProvider_Structured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Format) == 0 {
			t.Error("schema not forwarded as format")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.1",
			"response": "```json\n{\"questions\":[\"Do you cook at home?\"]}\n```",
		})
	}))
	defer srv.Close()

	p, _ := NewOllamaProvider(OllamaConfig{Model: "llama3.1", BaseURL: srv.URL})
	req := Prompt("Topic: food", 10, 0)
	req.Schema = questionSchema()
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(resp.JSON) != `{"questions":["Do you cook at home?"]}` {
		t.Errorf("JSON = %s", resp.JSON)
	}
}

func TestNormalizeOllamaHost(t *testing.T) {
	tests := map[string]string{
		"127.0.0.1:11434":       "http://127.0.0.1:11434",
		"http://gpu-box:11434/": "http://gpu-box:11434",
		" https://x.example ":   "https://x.example",
	}
	for in, want := range tests {
		if got := normalizeOllamaHost(in); got != want {
			t.Errorf("normalizeOllamaHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDiscoverConfig_Ollama(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	t.Setenv("OLLAMA_HOST", "localhost:11434")

	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "ollama" || cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Fatalf("DiscoverConfig() = %+v, %v", cfg, ok)
	}
}
