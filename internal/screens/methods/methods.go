// Package methods shows which PDF conversion methods work on this machine
// and lets the user pick the one used for PDF export and preview.
package methods

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/router"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/ui/components"
	"github.com/aerladis/eflwizard/internal/ui/layout"
	"github.com/aerladis/eflwizard/internal/ui/theme"
)

// Checker reports converter availability. *pdfconv.Registry implements it.
type Checker interface {
	Availability(ctx context.Context) []pdfconv.Status
}

// SelectedMsg tells the editor which method to use from now on.
type SelectedMsg struct {
	Method pdfconv.Method
}

func (SelectedMsg) Broadcast() {}

type checkedMsg struct {
	statuses []pdfconv.Status
}

// Screen lists the converters.
type Screen struct {
	checker  Checker
	current  pdfconv.Method
	statuses []pdfconv.Status
	cursor   int
	probing  bool
	spinner  components.Spinner
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)

// New creates the screen; current is the method in use.
func New(p Checker, current pdfconv.Method) *Screen {
	return &Screen{checker: p, current: current, spinner: components.Spinner{ID: 3}}
}

func (s *Screen) Init() tea.Cmd {
	return s.check()
}

func (s *Screen) Title() string {
	return "PDF methods"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Use method"},
		{Key: "R", Description: "Re-check"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) check() tea.Cmd {
	s.probing = true
	p := s.checker
	return tea.Batch(s.spinner.Start(), func() tea.Msg {
		return checkedMsg{statuses: p.Availability(context.Background())}
	})
}

// rows is "auto" followed by each converter.
func (s *Screen) rows() []pdfconv.Method {
	out := []pdfconv.Method{pdfconv.MethodAuto}
	for _, st := range s.statuses {
		out = append(out, st.Method)
	}
	return out
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case checkedMsg:
		s.probing = false
		s.spinner.Stop()
		s.statuses = msg.statuses
		for i, m := range s.rows() {
			if m == s.current {
				s.cursor = i
			}
		}
		return s, nil

	case SelectedMsg:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case tea.KeyMsg:
		rows := s.rows()
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(rows)-1 {
				s.cursor++
			}
		case "r", "R":
			if !s.probing {
				return s, s.check()
			}
		case "enter":
			if s.probing || s.cursor >= len(rows) {
				return s, nil
			}
			chosen := rows[s.cursor]
			if st, ok := s.status(chosen); ok && st.Err != nil {
				return s, nil
			}
			s.current = chosen
			return s, func() tea.Msg { return SelectedMsg{Method: chosen} }
		}
	}
	return s, nil
}

func (s *Screen) status(m pdfconv.Method) (pdfconv.Status, bool) {
	for _, st := range s.statuses {
		if st.Method == m {
			return st, true
		}
	}
	return pdfconv.Status{}, false
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("PDF export and the exact preview convert the filled DOCX with one of these."))
	b.WriteString("\n\n")

	if s.probing && s.statuses == nil {
		b.WriteString("  " + s.spinner.View() + " " + theme.Hint.Render("Checking PDF methods..."))
		return b.String()
	}

	available, missing := pdfconv.Split(s.statuses)
	for i, m := range s.rows() {
		marker := "  "
		if i == s.cursor {
			marker = "▸ "
		}
		label := "Auto (first that works)"
		state := lipgloss.NewStyle().Foreground(theme.Success).Render("✓")
		detail := ""
		if st, ok := s.status(m); ok {
			label = st.Label
			if st.Err != nil {
				state = lipgloss.NewStyle().Foreground(theme.Error).Render("✗")
				detail = theme.Hint.Render("  " + firstLine(st.Err.Error()))
			}
		}
		if m == s.current {
			label += "  (in use)"
		}
		style := theme.Unselected
		if i == s.cursor {
			style = theme.Selected
		}
		b.WriteString(fmt.Sprintf("  %s%s %s%s\n", style.Render(marker), state, style.Render(label), detail))
	}

	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  Available: %s", joinOrNone(available))))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  Missing:   %s", joinOrNone(missing))))
	b.WriteString("\n")
	return b.String()
}

func joinOrNone(labels []string) string {
	if len(labels) == 0 {
		return "none"
	}
	return strings.Join(labels, ", ")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
