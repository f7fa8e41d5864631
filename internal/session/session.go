// Package session holds the worksheet being edited: the unit inputs,
// generation options and the fifteen question slots.
package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aerladis/eflwizard/internal/docx"
	"github.com/aerladis/eflwizard/internal/generator"
	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/questions"
	"github.com/aerladis/eflwizard/internal/topics"
)

var (
	Levels = []string{"A1", "A2", "B1", "B1+", "B2", "C1", "C2"}
	Tiers  = []string{"Upper", "Neutral", "Lower"}
	Styles = []string{"Standard", "Concise", "Detailed", "Creative"}
)

// ErrTitleRequired is returned by RequireTitle.
var ErrTitleRequired = generator.ErrTitleRequired

// Question is one of the fifteen slots.
type Question struct {
	Text        string
	Regenerated bool
	Placeholder bool
}

// Session is the worksheet under edit. Every setter calls OnChange so the
// owner can drop a stale preview.
type Session struct {
	ID         string
	Title      string
	Level      string
	Tier       string
	TopicsText string
	VocabText  string
	Options    prompts.Options
	Questions  [questions.Count]Question

	// OnChange runs after any change to content that appears in the
	// exported worksheet or in the prompts.
	OnChange func()

	revision int
}

// New returns a session with placeholder questions.
func New(level, tier string, opts prompts.Options) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Level:   level,
		Tier:    tier,
		Options: opts,
	}
	for i := range s.Questions {
		s.Questions[i] = Question{Text: Placeholder(i), Placeholder: true}
	}
	return s
}

// Placeholder is the text of an empty slot.
func Placeholder(i int) string {
	return fmt.Sprintf("Question %d will appear here…", i+1)
}

// Revision increases with every change.
func (s *Session) Revision() int { return s.revision }

func (s *Session) changed() {
	s.revision++
	if s.OnChange != nil {
		s.OnChange()
	}
}

func (s *Session) SetTitle(t string) {
	s.Title = strings.TrimSpace(t)
	s.changed()
}

func (s *Session) SetLevel(l string) {
	s.Level = l
	s.changed()
}

func (s *Session) SetTier(t string) {
	s.Tier = t
	s.changed()
}

func (s *Session) SetTopics(t string) {
	s.TopicsText = t
	s.changed()
}

func (s *Session) SetVocab(v string) {
	s.VocabText = v
	s.changed()
}

func (s *Session) SetOptions(o prompts.Options) {
	s.Options = o
	s.changed()
}

func checkIndex(i int) error {
	if i < 0 || i >= questions.Count {
		return fmt.Errorf("question index %d out of range", i+1)
	}
	return nil
}

// Edit replaces question i with hand-written text.
func (s *Session) Edit(i int, text string) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	q, err := questions.Normalize(text)
	if err != nil {
		return err
	}
	s.Questions[i] = Question{Text: q}
	s.changed()
	return nil
}

// ApplyBatch installs a generated batch, padding or trimming it to fifteen.
// Every question is normalized; order is kept.
func (s *Session) ApplyBatch(qs []string) {
	normalized := make([]string, 0, len(qs))
	for _, q := range qs {
		if n, err := questions.Normalize(q); err == nil {
			normalized = append(normalized, n)
		}
	}
	for i, q := range questions.EnsureFifteen(normalized) {
		s.Questions[i] = Question{Text: q}
	}
	s.changed()
}

// ApplySingle installs a regenerated question and marks it.
func (s *Session) ApplySingle(i int, q string) error {
	if err := checkIndex(i); err != nil {
		return err
	}
	q, err := questions.Normalize(q)
	if err != nil {
		return err
	}
	s.Questions[i] = Question{Text: q, Regenerated: true}
	s.changed()
	return nil
}

// RequireTitle gates generate, regenerate and export.
func (s *Session) RequireTitle() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrTitleRequired
	}
	return nil
}

// Inputs builds a generation request. A topics box that still holds a
// pasted "vocab:" block is parsed as one, and its title wins; otherwise
// the vocab field is split on commas. The title update does not count as
// a change.
func (s *Session) Inputs() generator.Request {
	title, topicsText := s.Title, s.TopicsText
	var vocab []string
	if strings.Contains(strings.ToLower(topicsText), "vocab:") {
		title, topicsText, vocab = topics.ParseBlock(topicsText, s.Title)
		s.Title = title
	} else {
		vocab = topics.SplitVocab(s.VocabText)
	}
	return generator.Request{
		Title:      title,
		Level:      s.Level,
		Tier:       s.Tier,
		TopicsText: topicsText,
		Vocab:      vocab,
		Existing:   s.Existing(),
		Options:    s.Options,
	}
}

// Existing returns the non-placeholder questions.
func (s *Session) Existing() []string {
	var out []string
	for _, q := range s.Questions {
		if !q.Placeholder {
			out = append(out, q.Text)
		}
	}
	return out
}

// Texts returns all fifteen slot texts, placeholders included.
func (s *Session) Texts() []string {
	out := make([]string, len(s.Questions))
	for i, q := range s.Questions {
		out[i] = q.Text
	}
	return out
}

// HasQuestions reports whether any slot holds a real question.
func (s *Session) HasQuestions() bool {
	for _, q := range s.Questions {
		if !q.Placeholder {
			return true
		}
	}
	return false
}

// Content is the worksheet as exported.
func (s *Session) Content() docx.Content {
	return docx.Content{Title: s.Title, Level: s.Level, Questions: s.Texts()}
}

// Key identifies the exported content for preview caching.
func (s *Session) Key() string {
	return preview.ContentKey(s.Title, s.Level, s.Texts())
}

// ApplyImport loads an OCR extraction into the unit fields.
func (s *Session) ApplyImport(e topics.Extraction) {
	if t := strings.TrimSpace(e.Title); t != "" {
		s.Title = t
	}
	s.TopicsText = e.TopicsText
	s.VocabText = strings.Join(e.Vocab, ", ")
	s.changed()
}
