package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPrompt(t *testing.T) {
	req := Prompt("Write fifteen questions about travel.", 800, 0.7)
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if req.Messages[0].Content != "Write fifteen questions about travel." {
		t.Errorf("content = %q", req.Messages[0].Content)
	}
	if req.MaxTokens != 800 || req.Temperature != 0.7 || req.Schema != nil {
		t.Errorf("request = %+v", req)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 10*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if p.ModelID() != "slow" {
		t.Errorf("ModelID = %q", p.ModelID())
	}

	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Error("zero timeout should return the provider unchanged")
	}
}
