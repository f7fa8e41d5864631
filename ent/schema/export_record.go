package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExportRecord is written each time a question set is saved as DOCX or PDF.
type ExportRecord struct {
	ent.Schema
}

func (ExportRecord) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ExportRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.String("title"),
		field.String("level"),
		field.Enum("format").
			Values("docx", "pdf"),
		field.String("method").
			Default("").
			Comment("PDF conversion method that succeeded"),
		field.String("path"),
		field.String("content_key").
			Comment("sha1 of title, level and questions"),
		field.Int("question_count"),
	}
}

func (ExportRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("content_key"),
	}
}
