package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newOpenAICompatible("test-key", "gpt-4o-mini", server.URL+"/v1", nil)
}

func chatAnswer(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_FreeText(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatAnswer("1. What do you usually eat for breakfast?\n2. Why?\n", "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:   "You write ESL discussion questions.",
		Messages: []Message{{Role: RoleUser, Content: "Topic: food"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "1. What do you usually eat for breakfast?\n2. Why?" {
		t.Fatalf("Text = %q", resp.Text)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 || resp.StopReason != StopEnd {
		t.Fatalf("response = %+v", resp)
	}
}

func TestOpenAIProvider_StrictSchemaSent(t *testing.T) {
	var sent struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		ResponseFormat struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name   string         `json:"name"`
				Strict bool           `json:"strict"`
				Schema map[string]any `json:"schema"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatAnswer(`{"questions":["Do you cook?"]}`, "stop"))
	})

	resp, err := p.Generate(context.Background(), Request{
		System:   "You write ESL discussion questions.",
		Messages: []Message{{Role: RoleUser, Content: "Topic: food"}},
		Schema:   questionSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.JSON) != `{"questions":["Do you cook?"]}` {
		t.Fatalf("JSON = %s", resp.JSON)
	}

	if len(sent.Messages) != 2 || sent.Messages[0].Role != "system" {
		t.Errorf("messages = %+v", sent.Messages)
	}
	js := sent.ResponseFormat.JSONSchema
	if sent.ResponseFormat.Type != "json_schema" || js.Name != "test-questions" || !js.Strict {
		t.Errorf("response_format = %+v", sent.ResponseFormat)
	}
	qs, _ := js.Schema["properties"].(map[string]any)["questions"].(map[string]any)
	if _, ok := qs["maxItems"]; ok {
		t.Errorf("maxItems sent in strict mode: %v", qs)
	}
}

func TestOpenAIProvider_StructuredTruncated(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatAnswer(`{"questions":["Do you`, "length"))
	})

	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Topic: food"}},
		Schema:   questionSchema(),
	})
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got: %T (%v)", err, err)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		target any
	}{
		{"rate limit", http.StatusTooManyRequests, new(*ErrRateLimit)},
		{"server error", http.StatusInternalServerError, new(*ErrProviderUnavailable)},
		{"unknown model", http.StatusNotFound, new(*ErrRejected)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": "no"},
				})
			})
			_, err := p.Generate(context.Background(), Prompt("Topic: food", 100, 0))
			if !errors.As(err, tt.target) {
				t.Fatalf("got %T (%v)", err, err)
			}
		})
	}
}

func TestStrictDefinition(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"pattern":   map[string]any{"type": "string", "pattern": "^[A-Z]"},
			"questions": map[string]any{"type": "array", "minItems": 1, "items": map[string]any{"type": "string", "maxLength": 200}},
		},
	}
	got := strictDefinition(def)

	props := got["properties"].(map[string]any)
	field, ok := props["pattern"].(map[string]any)
	if !ok {
		t.Fatal("property named pattern was dropped")
	}
	if _, ok := field["pattern"]; ok {
		t.Error("pattern keyword kept")
	}
	qs := props["questions"].(map[string]any)
	if _, ok := qs["minItems"]; ok {
		t.Error("minItems kept")
	}
	if _, ok := qs["items"].(map[string]any)["maxLength"]; ok {
		t.Error("nested maxLength kept")
	}
	if _, ok := def["properties"].(map[string]any)["questions"].(map[string]any)["minItems"]; !ok {
		t.Error("original definition modified")
	}
}

func TestOpenAIModelMapping(t *testing.T) {
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Fatalf("ModelID = %q", p.ModelID())
	}
	if _, err := NewOpenAIProvider(OpenAIConfig{}); err == nil {
		t.Fatal("expected error without an API key")
	}
}
