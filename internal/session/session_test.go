package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/questions"
	"github.com/aerladis/eflwizard/internal/topics"
)

func newSession() (*Session, *int) {
	s := New("B2", "Upper", prompts.DefaultOptions())
	changes := 0
	s.OnChange = func() { changes++ }
	return s, &changes
}

func TestNewHasPlaceholders(t *testing.T) {
	s, _ := newSession()
	if s.ID == "" {
		t.Fatal("missing session ID")
	}
	for i, q := range s.Questions {
		if !q.Placeholder || q.Text != Placeholder(i) {
			t.Fatalf("slot %d = %+v", i, q)
		}
	}
	if s.HasQuestions() || len(s.Existing()) != 0 {
		t.Error("placeholders counted as questions")
	}
	if !strings.HasPrefix(s.Questions[14].Text, "Question 15 ") {
		t.Errorf("last placeholder = %q", s.Questions[14].Text)
	}
}

func TestSettersNotify(t *testing.T) {
	s, changes := newSession()
	s.SetTitle("  Food  ")
	s.SetLevel("B1+")
	s.SetTier("Lower")
	s.SetTopics("* cooking")
	s.SetVocab("recipe")
	s.SetOptions(prompts.Options{Style: "Concise"})
	if *changes != 6 || s.Revision() != 6 {
		t.Errorf("changes = %d, revision = %d, want 6", *changes, s.Revision())
	}
	if s.Title != "Food" {
		t.Errorf("title not trimmed: %q", s.Title)
	}
}

func TestEdit(t *testing.T) {
	s, changes := newSession()
	if err := s.Edit(2, "  what do you cook  "); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if s.Questions[2].Text != "what do you cook?" || s.Questions[2].Placeholder {
		t.Errorf("slot = %+v", s.Questions[2])
	}
	if err := s.Edit(2, "   "); !errors.Is(err, questions.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
	if err := s.Edit(15, "x"); err == nil {
		t.Error("expected range error")
	}
	if *changes != 1 {
		t.Errorf("changes = %d, want 1", *changes)
	}
}

func TestApplyBatchAndSingle(t *testing.T) {
	s, _ := newSession()
	if err := s.ApplySingle(0, "Old?"); err != nil {
		t.Fatal(err)
	}
	s.ApplyBatch([]string{"One?", "Two?"})
	if s.Questions[0].Regenerated {
		t.Error("batch kept regenerated mark")
	}
	if s.Questions[1].Text != "Two?" || s.Questions[2].Text != questions.Filler {
		t.Errorf("batch not padded: %q", s.Texts()[:3])
	}
	if len(s.Existing()) != questions.Count {
		t.Errorf("Existing = %d", len(s.Existing()))
	}

	if err := s.ApplySingle(4, " New? "); err != nil {
		t.Fatal(err)
	}
	if q := s.Questions[4]; q.Text != "New?" || !q.Regenerated {
		t.Errorf("slot = %+v", q)
	}
	if err := s.ApplySingle(4, ""); !errors.Is(err, questions.ErrEmpty) {
		t.Errorf("expected ErrEmpty, got %v", err)
	}
}

func TestApplyForcesQuestionMark(t *testing.T) {
	s, _ := newSession()
	s.ApplyBatch([]string{"Do you cook", "  Where   do you shop.  ", "", "Who pays?"})
	want := []string{"Do you cook?", "Where do you shop?", "Who pays?", questions.Filler}
	for i, w := range want {
		if got := s.Questions[i].Text; got != w {
			t.Errorf("q[%d] = %q, want %q", i, got, w)
		}
	}

	if err := s.ApplySingle(7, "What would you change"); err != nil {
		t.Fatal(err)
	}
	if got := s.Questions[7].Text; got != "What would you change?" {
		t.Errorf("single = %q", got)
	}
	for i, q := range s.Texts() {
		if !strings.HasSuffix(q, "?") {
			t.Errorf("q[%d] = %q does not end in ?", i, q)
		}
	}
}

func TestRequireTitle(t *testing.T) {
	s, _ := newSession()
	if err := s.RequireTitle(); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}
	s.SetTitle("Travel")
	if err := s.RequireTitle(); err != nil {
		t.Error(err)
	}
}

func TestInputsSeparateFields(t *testing.T) {
	s, _ := newSession()
	s.SetTitle("Travel")
	s.SetTopics("* airports")
	s.SetVocab("passport, luggage ,, gate")
	req := s.Inputs()
	if req.Title != "Travel" || req.TopicsText != "* airports" {
		t.Errorf("req = %+v", req)
	}
	if strings.Join(req.Vocab, "|") != "passport|luggage|gate" {
		t.Errorf("vocab = %q", req.Vocab)
	}
	if req.Existing != nil {
		t.Errorf("placeholders leaked into Existing: %q", req.Existing)
	}
}

func TestInputsPastedBlock(t *testing.T) {
	s, changes := newSession()
	s.SetTitle("Draft")
	s.SetTopics("Unit 3A - Looking Back\n* childhood memories\nVocab: nostalgia, recall")
	s.SetVocab("ignored")
	before := *changes

	req := s.Inputs()
	if req.Title != "Looking Back" || s.Title != "Looking Back" {
		t.Errorf("title = %q / %q", req.Title, s.Title)
	}
	if req.TopicsText != "* childhood memories" {
		t.Errorf("topics = %q", req.TopicsText)
	}
	if strings.Join(req.Vocab, "|") != "nostalgia|recall" {
		t.Errorf("vocab = %q", req.Vocab)
	}
	if *changes != before {
		t.Error("title update from block counted as change")
	}
}

func TestContentAndKey(t *testing.T) {
	s, _ := newSession()
	s.SetTitle("Food")
	s.ApplyBatch([]string{"One?"})
	c := s.Content()
	if c.Title != "Food" || c.Level != "B2" || len(c.Questions) != questions.Count {
		t.Errorf("content = %+v", c)
	}
	if s.Key() != preview.ContentKey("Food", "B2", s.Texts()) {
		t.Error("key mismatch")
	}
	before := s.Key()
	s.Edit(0, "Changed?")
	if s.Key() == before {
		t.Error("key did not change with content")
	}
}

func TestApplyImport(t *testing.T) {
	s, changes := newSession()
	s.SetTitle("Keep")
	s.ApplyImport(topics.Extraction{TopicsText: "* a\n* b", Vocab: []string{"x", "y"}})
	if s.Title != "Keep" || s.VocabText != "x, y" || s.TopicsText != "* a\n* b" {
		t.Errorf("session = %+v", s)
	}
	s.ApplyImport(topics.Extraction{Title: "New"})
	if s.Title != "New" || *changes != 3 {
		t.Errorf("title = %q, changes = %d", s.Title, *changes)
	}
}
