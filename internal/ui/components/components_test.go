package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(s string) tea.KeyPressMsg {
	switch s {
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func TestChoiceCycles(t *testing.T) {
	c := NewChoice([]string{"Upper", "Neutral", "Lower"}, "Neutral")
	if c.Value() != "Neutral" {
		t.Fatalf("expected Neutral, got %q", c.Value())
	}

	c, changed := c.Update(key("right"))
	if !changed || c.Value() != "Lower" {
		t.Errorf("expected Lower after right, got %q (changed=%v)", c.Value(), changed)
	}
	c, _ = c.Update(key("right"))
	if c.Value() != "Upper" {
		t.Errorf("expected wrap to Upper, got %q", c.Value())
	}
	c, _ = c.Update(key("left"))
	if c.Value() != "Lower" {
		t.Errorf("expected wrap back to Lower, got %q", c.Value())
	}
	if _, changed := c.Update(key("x")); changed {
		t.Error("unrelated key should not change the choice")
	}
}

func TestChoiceUnknownValue(t *testing.T) {
	c := NewChoice([]string{"A1", "A2"}, "Z9")
	if c.Value() != "A1" {
		t.Errorf("expected first option, got %q", c.Value())
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	m := NewMenu([]MenuItem{
		{Label: "Check", Disabled: true},
		{Label: "Install"},
		{Label: "Back"},
	})
	if m.Selected != 1 {
		t.Fatalf("expected first enabled item selected, got %d", m.Selected)
	}
	m, _ = m.Update(key("down"))
	if m.Selected != 2 {
		t.Errorf("expected 2 after down, got %d", m.Selected)
	}

	m.SetDisabled(2, true)
	if m.Selected != 1 {
		t.Errorf("expected selection to move off disabled item, got %d", m.Selected)
	}
	if !strings.Contains(m.View(), "▸ Install") {
		t.Errorf("expected marker on selected item:\n%s", m.View())
	}
}

type pressedMsg string

func TestButtonRow(t *testing.T) {
	row := NewButtonRow(
		NewButton("Regenerate", func() tea.Cmd { return func() tea.Msg { return pressedMsg("ok") } }),
		NewButton("Cancel", func() tea.Cmd { return func() tea.Msg { return pressedMsg("cancel") } }),
	)
	row, _ = row.Update(key("tab"))
	if row.Focus() != 1 {
		t.Fatalf("expected focus 1, got %d", row.Focus())
	}
	_, cmd := row.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected a command from enter")
	}
	if got := cmd(); got != pressedMsg("cancel") {
		t.Errorf("expected cancel, got %v", got)
	}
}

func TestProgressBarUnknownTotal(t *testing.T) {
	out := NewProgressBar("Download", -1, true, 40).View()
	if strings.Contains(out, "%") {
		t.Errorf("unknown total should not print a percentage: %q", out)
	}
	out = NewProgressBar("Download", 0.5, true, 40).View()
	if !strings.Contains(out, "50%") {
		t.Errorf("expected 50%%, got %q", out)
	}
}

func TestSpinnerIgnoresForeignTicks(t *testing.T) {
	s := Spinner{ID: 1}
	if cmd := s.Start(); cmd == nil {
		t.Fatal("expected tick command on start")
	}
	if cmd := s.Start(); cmd != nil {
		t.Error("second Start should not schedule another tick")
	}

	s, cmd := s.Update(SpinnerTickMsg{ID: 2})
	if cmd != nil {
		t.Error("tick for another spinner should be ignored")
	}
	s, cmd = s.Update(SpinnerTickMsg{ID: 1})
	if cmd == nil {
		t.Error("own tick should schedule the next one")
	}

	s.Stop()
	if _, cmd := s.Update(SpinnerTickMsg{ID: 1}); cmd != nil {
		t.Error("stopped spinner should not tick")
	}
	if s.View() != "" {
		t.Error("stopped spinner should render nothing")
	}
}
