package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

type updateRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *updateRepo) RecordUpdateCheck(ctx context.Context, data UpdateCheckData) error {
	err := insertEvent(ctx, r.drv, r.seq, tableUpdateChecks,
		[]string{"current_version", "latest_version", "available", "notes", "error_message"},
		[]any{data.CurrentVersion, data.LatestVersion, data.Available, data.Notes, data.ErrorMessage},
	)
	if err != nil {
		return fmt.Errorf("record update check: %w", err)
	}
	return nil
}

func (r *updateRepo) LastUpdateCheck(ctx context.Context) (*UpdateCheckRecord, error) {
	var out []UpdateCheckRecord
	if err := selectEvents(ctx, r.drv, tableUpdateChecks, QueryOpts{Limit: 1}, nil, &out); err != nil {
		return nil, fmt.Errorf("last update check: %w", err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}
