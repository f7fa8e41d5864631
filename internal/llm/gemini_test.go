package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-2.5-pro"},
		{"gemini-2.5-flash-lite", "gemini-2.5-flash-lite"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(questionSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %s", s.Type)
	}
	if len(s.Required) != 1 || s.Required[0] != "questions" {
		t.Fatalf("required = %v", s.Required)
	}
	qs := s.Properties["questions"]
	if qs == nil || qs.Type != genai.TypeArray || qs.Items.Type != genai.TypeString {
		t.Fatalf("questions = %+v", qs)
	}
	if qs.MinItems == nil || *qs.MinItems != 1 || qs.MaxItems == nil || *qs.MaxItems != 3 {
		t.Fatalf("item limits = %v / %v", qs.MinItems, qs.MaxItems)
	}
	if level := s.Properties["level"]; len(level.Enum) != 3 {
		t.Fatalf("level enum = %v", level.Enum)
	}
}

func TestGeminiSchemaDecodedJSON(t *testing.T) {
	// Definitions loaded from JSON carry float64 numbers and []any lists.
	s := geminiSchema(map[string]any{
		"type":     "array",
		"items":    map[string]any{"type": "string"},
		"maxItems": float64(15),
		"required": []string{"x"},
	})
	if s.MaxItems == nil || *s.MaxItems != 15 {
		t.Fatalf("maxItems = %v", s.MaxItems)
	}
	if len(s.Required) != 1 {
		t.Fatalf("required = %v", s.Required)
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Request{System: "You write ESL discussion questions.", MaxTokens: 800, Temperature: 0.7})
	if cfg.MaxOutputTokens != 800 || cfg.Temperature == nil || *cfg.Temperature != float32(0.7) {
		t.Fatalf("config = %+v", cfg)
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "You write ESL discussion questions." {
		t.Fatalf("system = %+v", cfg.SystemInstruction)
	}
	if cfg.ResponseSchema != nil || cfg.ResponseMIMEType != "" {
		t.Fatal("free-text request configured for JSON")
	}

	cfg = geminiConfig(Request{Schema: questionSchema()})
	if cfg.ResponseMIMEType != "application/json" || cfg.ResponseSchema == nil || cfg.Temperature != nil {
		t.Fatalf("structured config = %+v", cfg)
	}
}

func TestGeminiContents(t *testing.T) {
	got := geminiContents([]Message{
		{Role: RoleUser, Content: "Topic: food"},
		{Role: RoleAssistant, Content: "1. Do you cook?"},
	})
	if len(got) != 2 || got[0].Role != genai.RoleUser || got[1].Role != genai.RoleModel {
		t.Fatalf("contents = %+v", got)
	}
}
