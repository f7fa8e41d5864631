package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// UpdateCheck records the outcome of each manifest check.
type UpdateCheck struct {
	ent.Schema
}

func (UpdateCheck) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (UpdateCheck) Fields() []ent.Field {
	return []ent.Field{
		field.String("current_version"),
		field.String("latest_version").
			Default(""),
		field.Bool("available").
			Default(false),
		field.Text("notes").
			Default(""),
		field.String("error_message").
			Default(""),
	}
}
