package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/aerladis/eflwizard/ent/schema"
)

// Table names for the ent schemas in ent/schema.
const (
	tableLLMRequests  = "llm_request_events"
	tableFeedback     = "feedback_entries"
	tableExports      = "export_records"
	tableUpdateChecks = "update_checks"
)

var entities = []struct {
	table  string
	schema ent.Interface
}{
	{tableLLMRequests, entschema.LLMRequestEvent{}},
	{tableFeedback, entschema.FeedbackEntry{}},
	{tableExports, entschema.ExportRecord{}},
	{tableUpdateChecks, entschema.UpdateCheck{}},
}

// migrate creates or alters the tables described by the ent schemas.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := tableFor(e.table, e.schema)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	return m.Create(ctx, tables...)
}

// tableFor turns an ent schema (mixins first, then its own fields and
// indexes) into a migration table with an integer primary key.
func tableFor(name string, s ent.Interface) (*schema.Table, error) {
	var (
		fields  []ent.Field
		indexes []ent.Index
	)
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := schema.NewTable(name)
	t.AddPrimary(&schema.Column{Name: "id", Type: field.TypeInt, Increment: true})

	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		col := &schema.Column{
			Name:     columnName(d),
			Type:     d.Info.Type,
			Unique:   d.Unique,
			Nullable: d.Optional,
			Size:     int64(d.Size),
		}
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			col.Default = d.Default
		}
		for _, e := range d.Enums {
			col.Enums = append(col.Enums, e.V)
		}
		t.AddColumn(col)
	}

	for _, idx := range indexes {
		d := idx.Descriptor()
		iname := d.StorageKey
		if iname == "" {
			iname = name + "_" + strings.Join(d.Fields, "_")
		}
		t.AddIndex(iname, d.Unique, d.Fields)
	}
	return t, nil
}

func columnName(d *field.Descriptor) string {
	if d.StorageKey != "" {
		return d.StorageKey
	}
	return d.Name
}
