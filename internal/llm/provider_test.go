package llm

import (
	"context"
	"errors"
	"testing"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "1. Do you like rainy days?\n2. Why?", Usage: newUsage(10, 5)},
		Reply("What did you do last weekend?"),
	)

	first, err := mock.Generate(context.Background(), Prompt("Write questions about weather.", 100, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Text != "1. Do you like rainy days?\n2. Why?" {
		t.Fatalf("Text = %q", first.Text)
	}
	if first.Usage.InputTokens != 10 || first.Usage.TotalTokens != 15 {
		t.Fatalf("usage = %+v", first.Usage)
	}
	if first.StopReason != StopEnd || first.Model != "mock" {
		t.Fatalf("metadata = %+v", first)
	}

	second, err := mock.Generate(context.Background(), Prompt("Rewrite question 3.", 50, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Text != "What did you do last weekend?" {
		t.Fatalf("Text = %q", second.Text)
	}
	if mock.LastPrompt() != "Rewrite question 3." {
		t.Fatalf("LastPrompt = %q", mock.LastPrompt())
	}
}

func TestMockProvider_EnforcesSchema(t *testing.T) {
	mock := NewMockProvider(
		Reply("1. Do you cook?"),
		Reply(`{"questions":["Do you cook?"]}`),
	)
	req := Request{Schema: questionSchema(), Messages: []Message{{Role: RoleUser, Content: "x"}}}

	_, err := mock.Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}

	resp, err := mock.Generate(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if string(resp.JSON) != `{"questions":["Do you cook?"]}` {
		t.Fatalf("JSON = %s", resp.JSON)
	}
}

func TestMockProvider_EmptyScript(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
	if mock.LastPrompt() != "" {
		t.Errorf("LastPrompt = %q for a request with no messages", mock.LastPrompt())
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(Reply("Is homework useful?"))

	req := Request{
		System:   "You write ESL discussion questions.",
		Messages: []Message{{Role: RoleUser, Content: "Topic: school"}},
	}
	if _, err := mock.Generate(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != req.System {
		t.Fatalf("System = %q", mock.Calls[0].System)
	}
}

func TestMockProvider_ScriptedError(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{}})

	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != Unlabelled {
		t.Fatalf("expected %q, got %q", Unlabelled, p)
	}
	if p := PurposeFrom(WithPurpose(ctx, "")); p != Unlabelled {
		t.Fatalf("empty purpose should not be recorded, got %q", p)
	}

	ctx = WithPurpose(ctx, "question-batch")
	if p := PurposeFrom(ctx); p != "question-batch" {
		t.Fatalf("expected 'question-batch', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"ollama without host", Config{Provider: "ollama"}, true},
		{"ollama with host", Config{Provider: "ollama", Ollama: OllamaConfig{BaseURL: defaultOllamaBaseURL}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "palm"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
