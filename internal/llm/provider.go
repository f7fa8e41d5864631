// Package llm talks to the text models that write discussion questions.
// Each vendor sits behind Provider; timeouts, retries and event logging are
// decorators stacked around it by NewProvider.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one prompt to a model and returns its answer.
type Provider interface {
	// Generate runs req. Most prompts ask for free text (a numbered list of
	// questions, a single rewritten question, extracted topics) and the
	// answer is in Response.Text. When req.Schema is set the answer must be
	// a JSON object matching it and Response.JSON holds the validated copy.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, used for event logging and pricing.
	ModelID() string
}

// Request is one model call. Generation is single-turn: one user message
// carrying the formatted prompt, with an optional system prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema switches the call to the vendor's structured output mode.
	Schema *Schema

	MaxTokens int

	// Temperature of 0 leaves the vendor default in place.
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema the answer must satisfy.
type Schema struct {
	// Name is kebab-case, e.g. "discussion-questions". Vendors that name
	// their response formats get it verbatim, and compiled validators are
	// cached under it.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a model answer.
type Response struct {
	// Text is the answer exactly as the model wrote it, trimmed.
	Text string

	// JSON is set only for schema requests, after validation. A Markdown
	// code fence around the object has been removed.
	JSON json.RawMessage

	Usage      Usage
	Model      string
	StopReason StopReason
}

// StopReason says why the model stopped writing.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

func newUsage(in, out int) Usage {
	return Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
}
