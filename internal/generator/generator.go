// Package generator asks a model for discussion questions and topic lists.
package generator

import (
	"context"
	"errors"

	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/topics"
)

// Model call purposes, recorded with every request event.
const (
	PurposeBatch   = "question-batch"
	PurposeSingle  = "question-single"
	PurposeExtract = "topic-extract"
)

var ErrTitleRequired = errors.New("unit title is required")

// Request describes the unit to write questions for.
type Request struct {
	Title      string
	Level      string
	Tier       string
	TopicsText string
	Vocab      []string
	// Existing are the current questions; regeneration must avoid them.
	Existing []string
	Options  prompts.Options
}

// Generator produces discussion questions using a model provider.
type Generator interface {
	// GenerateBatch returns exactly fifteen questions.
	GenerateBatch(ctx context.Context, req Request) ([]string, error)
	// Regenerate returns a replacement for question index, steered by the
	// teacher's optional feedback.
	Regenerate(ctx context.Context, req Request, index int, feedback string) (string, error)
	// ExtractTopics reads scanned text into a title, topics and vocabulary.
	ExtractTopics(ctx context.Context, text, fallbackTitle string) (topics.Extraction, error)
}

// TemplateSource supplies the current prompt templates.
type TemplateSource interface {
	Templates() prompts.Templates
}

// StaticTemplates is a TemplateSource that never changes.
type StaticTemplates prompts.Templates

func (s StaticTemplates) Templates() prompts.Templates { return prompts.Templates(s) }
