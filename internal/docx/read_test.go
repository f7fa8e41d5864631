package docx

import (
	"errors"
	"testing"
)

func TestReadQuestionsRoundTrip(t *testing.T) {
	qs := []string{"What is your favourite meal?", "Who cooks at home?"}
	out, err := Fill(DefaultTemplate(), Content{Title: "Food", Level: "B1", Questions: qs})
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	got, err := ReadQuestions(out)
	if err != nil {
		t.Fatalf("ReadQuestions: %v", err)
	}
	if len(got) != 2 || got[0] != qs[0] || got[1] != qs[1] {
		t.Errorf("ReadQuestions = %q", got)
	}
}

func TestReadQuestionsEmptyAndInvalid(t *testing.T) {
	out, err := Fill(DefaultTemplate(), Content{Title: "x"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ReadQuestions(out)
	if err != nil || len(got) != 0 {
		t.Errorf("ReadQuestions = %q, %v", got, err)
	}
	if _, err := ReadQuestions([]byte("not a zip")); err == nil || errors.Is(err, ErrNoDiscussion) {
		t.Errorf("expected archive error, got %v", err)
	}
}
