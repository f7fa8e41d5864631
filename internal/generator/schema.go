package generator

import (
	"github.com/aerladis/eflwizard/internal/llm"
	"github.com/aerladis/eflwizard/internal/questions"
)

// BatchSchema asks for the question set as a JSON array.
var BatchSchema = &llm.Schema{
	Name:        "discussion-questions",
	Description: "Fifteen ESL discussion questions for one unit",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"maxItems": questions.Count,
				"items": map[string]any{
					"type":        "string",
					"description": "One discussion question, a single sentence ending in '?'",
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

type batchOutput struct {
	Questions []string `json:"questions"`
}
