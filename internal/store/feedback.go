package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type feedbackRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *feedbackRepo) AppendFeedback(ctx context.Context, data FeedbackData) error {
	reason := data.Reason
	if reason == "" {
		reason = "n/a"
	}
	err := insertEvent(ctx, r.drv, r.seq, tableFeedback,
		[]string{"session_id", "question_index", "question", "reason"},
		[]any{data.SessionID, data.QuestionIndex, data.Question, reason},
	)
	if err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepo) ListFeedback(ctx context.Context, opts QueryOpts) ([]Feedback, error) {
	var out []Feedback
	if err := selectEvents(ctx, r.drv, tableFeedback, opts, nil, &out); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return out, nil
}
