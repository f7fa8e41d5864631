package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aerladis/eflwizard/internal/store"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, d)
	return r.err
}

func (r *recordingRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMEvent, error) {
	return nil, nil
}

func (r *recordingRepo) GetLLMEvent(context.Context, int) (*store.LLMEvent, error) { return nil, nil }

func (r *recordingRepo) LLMUsageByPurpose(context.Context) ([]store.PurposeUsage, error) {
	return nil, nil
}

func (r *recordingRepo) LLMUsageByModel(context.Context) ([]store.ModelUsage, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(MockResponse{
		Text:  "1. Why do people keep diaries?\n",
		Usage: newUsage(7, 3),
	})
	p := WithLogging(mock, "mock", repo, nil, true)

	ctx := WithPurpose(context.Background(), "question-batch")
	if _, err := p.Generate(ctx, Prompt("Write fifteen questions.", 100, 0)); err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "mock" || e.Purpose != "question-batch" || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.InputTokens != 7 || e.OutputTokens != 3 {
		t.Errorf("tokens = %d/%d", e.InputTokens, e.OutputTokens)
	}
	if e.RequestBody == "" || e.ResponseBody != "1. Why do people keep diaries?" {
		t.Errorf("bodies not captured: %+v", e)
	}
}

func TestLoggingProvider_NoCaptureAndFailure(t *testing.T) {
	repo := &recordingRepo{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	p := WithLogging(mock, "mock", repo, nil, false)

	_, err := p.Generate(context.Background(), Prompt("Topic: manners", 10, 0))
	if err == nil {
		t.Fatal("expected provider error to pass through")
	}
	e := repo.events[0]
	if e.Success || e.ErrorMessage == "" {
		t.Errorf("failure not recorded: %+v", e)
	}
	if e.RequestBody != "" {
		t.Error("request body captured without capture flag")
	}
}

func TestLoggingProvider_NilRepo(t *testing.T) {
	mock := NewMockProvider(Reply("Is it rude to be late?"))
	p := WithLogging(mock, "mock", nil, nil, false)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("generate: %v", err)
	}
}
