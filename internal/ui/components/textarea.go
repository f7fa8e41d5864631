package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextArea wraps bubbles/textarea for multi-line fields such as topics.
type TextArea struct {
	Model textarea.Model
}

// NewTextArea creates a blurred text area of the given height.
func NewTextArea(placeholder string, height int) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(height)
	return TextArea{Model: ta}
}

// Update handles messages.
func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the text area.
func (t TextArea) View() string {
	return t.Model.View()
}

// Focus gives the area the cursor.
func (t *TextArea) Focus() tea.Cmd {
	return t.Model.Focus()
}

// Blur removes the cursor.
func (t *TextArea) Blur() {
	t.Model.Blur()
}

// SetSize resizes the area.
func (t *TextArea) SetSize(w, h int) {
	t.Model.SetWidth(w)
	t.Model.SetHeight(h)
}

// Value returns the text.
func (t TextArea) Value() string {
	return t.Model.Value()
}

// SetValue replaces the text.
func (t *TextArea) SetValue(v string) {
	t.Model.SetValue(v)
}
