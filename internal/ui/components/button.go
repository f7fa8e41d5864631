package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/aerladis/eflwizard/internal/ui/theme"
)

// Button is a styled button component.
type Button struct {
	Label   string
	Focused bool
	OnPress func() tea.Cmd
}

// NewButton creates a new button.
func NewButton(label string, onPress func() tea.Cmd) Button {
	return Button{
		Label:   label,
		OnPress: onPress,
	}
}

// Update presses the button on enter when it has focus.
func (b Button) Update(msg tea.Msg) (Button, tea.Cmd) {
	if !b.Focused {
		return b, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		if kmsg.String() == "enter" && b.OnPress != nil {
			return b, b.OnPress()
		}
	}
	return b, nil
}

// View renders the button.
func (b Button) View() string {
	if b.Focused {
		return theme.ButtonActive.Render("▸ " + b.Label)
	}
	return theme.ButtonInactive.Render("  " + b.Label)
}

// ButtonRow is a row of buttons where tab or left/right moves focus.
type ButtonRow struct {
	Buttons []Button
	focus   int
}

// NewButtonRow focuses the first button.
func NewButtonRow(buttons ...Button) ButtonRow {
	r := ButtonRow{Buttons: buttons}
	r.SetFocus(0)
	return r
}

// SetFocus focuses button i, wrapping around.
func (r *ButtonRow) SetFocus(i int) {
	if len(r.Buttons) == 0 {
		return
	}
	r.focus = (i + len(r.Buttons)) % len(r.Buttons)
	for j := range r.Buttons {
		r.Buttons[j].Focused = j == r.focus
	}
}

// Focus returns the index of the focused button.
func (r ButtonRow) Focus() int { return r.focus }

// Update moves focus or presses the focused button.
func (r ButtonRow) Update(msg tea.Msg) (ButtonRow, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "left", "shift+tab":
			r.SetFocus(r.focus - 1)
			return r, nil
		case "right", "tab":
			r.SetFocus(r.focus + 1)
			return r, nil
		}
	}
	if len(r.Buttons) == 0 {
		return r, nil
	}
	var cmd tea.Cmd
	r.Buttons[r.focus], cmd = r.Buttons[r.focus].Update(msg)
	return r, cmd
}

// View renders the buttons side by side.
func (r ButtonRow) View() string {
	parts := make([]string, len(r.Buttons))
	for i, b := range r.Buttons {
		parts[i] = b.View()
	}
	return strings.Join(parts, "  ")
}
