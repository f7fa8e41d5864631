package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aerladis/eflwizard/internal/ui/theme"
)

// Choice is a horizontal selector cycled with left/right.
type Choice struct {
	Options  []string
	Selected int
}

// NewChoice creates a selector with value preselected. An unknown value
// selects the first option.
func NewChoice(options []string, value string) Choice {
	c := Choice{Options: options}
	c.Set(value)
	return c
}

// Value returns the selected option.
func (c Choice) Value() string {
	if c.Selected < 0 || c.Selected >= len(c.Options) {
		return ""
	}
	return c.Options[c.Selected]
}

// Set selects value if it is one of the options.
func (c *Choice) Set(value string) {
	for i, o := range c.Options {
		if o == value {
			c.Selected = i
			return
		}
	}
}

// Update cycles on left/right. The returned bool reports a change.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(c.Options) == 0 {
		return c, false
	}
	switch kmsg.String() {
	case "left", "h":
		c.Selected = (c.Selected - 1 + len(c.Options)) % len(c.Options)
		return c, true
	case "right", "l", "space":
		c.Selected = (c.Selected + 1) % len(c.Options)
		return c, true
	}
	return c, false
}

// View renders the options with the selected one highlighted.
func (c Choice) View(focused bool) string {
	parts := make([]string, len(c.Options))
	for i, o := range c.Options {
		switch {
		case i == c.Selected && focused:
			parts[i] = theme.ButtonActive.Padding(0, 1).Render(o)
		case i == c.Selected:
			parts[i] = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Padding(0, 1).Render(o)
		default:
			parts[i] = lipgloss.NewStyle().Foreground(theme.TextDim).Padding(0, 1).Render(o)
		}
	}
	return strings.Join(parts, "")
}
