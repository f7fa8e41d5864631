package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// FeedbackEntry is the reason a teacher gave when regenerating a question.
type FeedbackEntry struct {
	ent.Schema
}

func (FeedbackEntry) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (FeedbackEntry) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id"),
		field.Int("question_index").
			Comment("1-based position of the question that was replaced"),
		field.Text("question").
			Comment("Question text before regeneration"),
		field.Text("reason").
			Default("n/a"),
	}
}

func (FeedbackEntry) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
