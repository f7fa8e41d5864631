package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aerladis/eflwizard/internal/llm"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/questions"
)

func testRequest() Request {
	return Request{
		Title:      "Looking Back",
		Level:      "B1",
		Tier:       "Neutral",
		TopicsText: "* childhood\n* school",
		Vocab:      []string{"memory"},
		Options:    prompts.DefaultOptions(),
	}
}

func numberedText(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d. What is question number %d about?\n", i, i)
	}
	return b.String()
}

func TestGenerateBatch(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply(numberedText(15)))
	gen := New(mock, nil, DefaultConfig(), nil)

	qs, err := gen.GenerateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(qs) != questions.Count {
		t.Fatalf("got %d questions, want %d", len(qs), questions.Count)
	}
	if qs[0] != "What is question number 1 about?" {
		t.Errorf("qs[0] = %q", qs[0])
	}

	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d", mock.CallCount())
	}
	req := mock.Calls[0]
	if req.Schema != nil {
		t.Error("text mode should not send a schema")
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, "UNIT: Looking Back") || !strings.Contains(prompt, "QUALITY VALIDATION REQUIREMENTS") {
		t.Errorf("unexpected prompt:\n%s", prompt)
	}
}

func TestGenerateBatchPadsShortResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply("1. Only one question?"))
	gen := New(mock, nil, DefaultConfig(), nil)

	qs, err := gen.GenerateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != questions.Count || qs[0] != "Only one question?" || qs[14] != questions.Filler {
		t.Errorf("unexpected padding: %q", qs)
	}
}

func TestGenerateBatchEmptyResponse(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply(""))
	gen := New(mock, nil, DefaultConfig(), nil)

	qs, err := gen.GenerateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	for i, q := range qs {
		if q != questions.Filler {
			t.Errorf("qs[%d] = %q, want filler", i, q)
		}
	}
}

func TestGenerateBatchStructured(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply(`{"questions":["Do you cook", "What do you eat?", "What do you eat?"]}`))
	cfg := DefaultConfig()
	cfg.Structured = true
	gen := New(mock, nil, cfg, nil)

	qs, err := gen.GenerateBatch(context.Background(), testRequest())
	if err != nil {
		t.Fatal(err)
	}
	if mock.Calls[0].Schema != BatchSchema {
		t.Error("structured mode should send BatchSchema")
	}
	if qs[0] != "Do you cook?" || qs[1] != "What do you eat?" || qs[2] != questions.Filler {
		t.Errorf("unexpected questions: %q", qs[:3])
	}
}

func TestGenerateBatchStructuredRejectsPlainList(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply(numberedText(15)))
	cfg := DefaultConfig()
	cfg.Structured = true
	gen := New(mock, nil, cfg, nil)

	_, err := gen.GenerateBatch(context.Background(), testRequest())
	var inv *llm.ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestGenerateBatchTitleRequired(t *testing.T) {
	mock := llm.NewMockProvider()
	gen := New(mock, nil, DefaultConfig(), nil)
	req := testRequest()
	req.Title = "  "

	if _, err := gen.GenerateBatch(context.Background(), req); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
	if _, err := gen.Regenerate(context.Background(), req, 0, ""); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("err = %v, want ErrTitleRequired", err)
	}
	if mock.CallCount() != 0 {
		t.Error("provider should not be called without a title")
	}
}

func TestGenerateBatchProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}})
	gen := New(mock, nil, DefaultConfig(), nil)

	_, err := gen.GenerateBatch(context.Background(), testRequest())
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Errorf("err = %v, want ErrProviderUnavailable", err)
	}
}

func TestRegenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply("What was your favourite toy as a child"))
	gen := New(mock, StaticTemplates(prompts.DefaultTemplates()), DefaultConfig(), nil)

	req := testRequest()
	req.Existing = []string{"Old question one?", "Old question two?"}
	q, err := gen.Regenerate(context.Background(), req, 1, "too easy")
	if err != nil {
		t.Fatal(err)
	}
	if q != "What was your favourite toy as a child?" {
		t.Errorf("q = %q", q)
	}

	prompt := mock.Calls[0].Messages[0].Content
	for _, want := range []string{"- Old question two?", "FEEDBACK ON PREVIOUS QUESTION: too easy", "OUTPUT: only the question text."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestRegenerateIndexRange(t *testing.T) {
	gen := New(llm.NewMockProvider(), nil, DefaultConfig(), nil)
	if _, err := gen.Regenerate(context.Background(), testRequest(), 15, ""); err == nil {
		t.Error("expected out of range error")
	}
}

func TestExtractTopics(t *testing.T) {
	mock := llm.NewMockProvider(llm.Reply("UNIT_TITLE: Food\nTOPICS:\n* favorite foods\n* cooking\nVOCAB: spicy, sweet"))
	gen := New(mock, nil, DefaultConfig(), nil)

	ex, err := gen.ExtractTopics(context.Background(), "we eat food", "Document")
	if err != nil {
		t.Fatal(err)
	}
	if ex.Title != "Food" || ex.TopicsText != "* favorite foods\n* cooking" || len(ex.Vocab) != 2 {
		t.Errorf("unexpected extraction: %+v", ex)
	}
}

func TestExtractTopicsFallback(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("no key")}}},
		{"unusable answer", llm.Reply("I cannot help with that.")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := New(llm.NewMockProvider(tt.resp), nil, DefaultConfig(), nil)
			ex, err := gen.ExtractTopics(context.Background(), "Our family dinner with mother and father", "Document")
			if err != nil {
				t.Fatal(err)
			}
			if ex.Title != "Document" || !strings.HasPrefix(ex.TopicsText, "* Family relationships") {
				t.Errorf("unexpected fallback: %+v", ex)
			}
		})
	}
}
