package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// insertEvent stamps the row with the next sequence number and the
// current UTC time, then inserts it.
func insertEvent(ctx context.Context, drv *entsql.Driver, seq *sequenceCounter, table string, cols []string, vals []any) error {
	n, err := seq.Next(ctx)
	if err != nil {
		return err
	}
	cols = append([]string{"sequence", "timestamp"}, cols...)
	vals = append([]any{n, time.Now().UTC()}, vals...)

	query, args := builder().Insert(table).Columns(cols...).Values(vals...).Query()
	if err := drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// selectEvents runs a newest-first query over an event table.
func selectEvents(ctx context.Context, drv *entsql.Driver, table string, opts QueryOpts, extra *entsql.Predicate, out any) error {
	sel := builder().Select("*").From(entsql.Table(table))

	var preds []*entsql.Predicate
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if extra != nil {
		preds = append(preds, extra)
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	return scanQuery(ctx, drv, sel, out)
}

func scanQuery(ctx context.Context, drv *entsql.Driver, sel *entsql.Selector, out any) error {
	query, args := sel.Query()
	var rows entsql.Rows
	if err := drv.Query(ctx, query, args, &rows); err != nil {
		return err
	}
	defer rows.Close()
	return entsql.ScanSlice(&rows, out)
}
