package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type exportRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *exportRepo) RecordExport(ctx context.Context, data ExportData) error {
	if data.Format != "docx" && data.Format != "pdf" {
		return fmt.Errorf("record export: unknown format %q", data.Format)
	}
	err := insertEvent(ctx, r.drv, r.seq, tableExports,
		[]string{"session_id", "title", "level", "format", "method", "path", "content_key", "question_count"},
		[]any{data.SessionID, data.Title, data.Level, data.Format, data.Method, data.Path, data.ContentKey, data.QuestionCount},
	)
	if err != nil {
		return fmt.Errorf("record export: %w", err)
	}
	return nil
}

func (r *exportRepo) RecentExports(ctx context.Context, limit int) ([]Export, error) {
	var out []Export
	if err := selectEvents(ctx, r.drv, tableExports, QueryOpts{Limit: limit}, nil, &out); err != nil {
		return nil, fmt.Errorf("recent exports: %w", err)
	}
	return out, nil
}
