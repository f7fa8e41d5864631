package methods

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/router"
)

type fakeChecker []pdfconv.Status

func (f fakeChecker) Availability(context.Context) []pdfconv.Status { return f }

func checked() fakeChecker {
	return fakeChecker{
		{Method: pdfconv.MethodSelfContained, Label: "Self-contained (built-in)"},
		{Method: pdfconv.MethodDocx2PDF, Label: "docx2pdf", Err: errors.New("docx2pdf not found")},
		{Method: pdfconv.MethodLibreOffice, Label: "LibreOffice"},
	}
}

func loaded(t *testing.T, current pdfconv.Method) *Screen {
	t.Helper()
	p := checked()
	s := New(p, current)
	s.probing = true
	s.Update(checkedMsg{statuses: p})
	return s
}

func TestCursorStartsOnCurrentMethod(t *testing.T) {
	s := loaded(t, pdfconv.MethodLibreOffice)
	if s.cursor != 3 {
		t.Errorf("expected cursor on LibreOffice row (3), got %d", s.cursor)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "LibreOffice  (in use)") {
		t.Errorf("expected in-use marker:\n%s", view)
	}
	if !strings.Contains(view, "Missing:   docx2pdf") {
		t.Errorf("expected missing list:\n%s", view)
	}
}

func TestSelectMethod(t *testing.T) {
	s := loaded(t, pdfconv.MethodAuto)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected selection command")
	}
	msg, ok := cmd().(SelectedMsg)
	if !ok || msg.Method != pdfconv.MethodSelfContained {
		t.Fatalf("unexpected message %#v", cmd())
	}

	_, cmd = s.Update(msg)
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected pop after selection")
	}
}

func TestMissingMethodCannotBeSelected(t *testing.T) {
	s := loaded(t, pdfconv.MethodAuto)
	s.cursor = 2 // docx2pdf

	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("missing method should not be selectable")
	}
}
