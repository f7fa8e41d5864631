package editor

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/aerladis/eflwizard/internal/config"
	"github.com/aerladis/eflwizard/internal/prompts"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/ui/components"
	"github.com/aerladis/eflwizard/internal/ui/theme"
)

var onOff = []string{"On", "Off"}

// advancedRow is one option: a fixed list of values plus how it maps to
// prompts.Options.
type advancedRow struct {
	label  string
	choice components.Choice
	apply  func(o *prompts.Options, v string)
}

type advancedPanel struct {
	rows   []advancedRow
	cursor int
}

func boolValue(b bool) string {
	if b {
		return "On"
	}
	return "Off"
}

func newAdvancedPanel(o prompts.Options) advancedPanel {
	return advancedPanel{rows: []advancedRow{
		{"Prompt style", components.NewChoice(config.Styles, o.Style),
			func(o *prompts.Options, v string) { o.Style = v }},
		{"Quality validation", components.NewChoice(onOff, boolValue(o.QualityValidation)),
			func(o *prompts.Options, v string) { o.QualityValidation = v == "On" }},
		{"Bloom's taxonomy", components.NewChoice(config.Blooms, o.Blooms),
			func(o *prompts.Options, v string) { o.Blooms = v }},
		{"Engagement", components.NewChoice(config.Engagements, o.Engagement),
			func(o *prompts.Options, v string) { o.Engagement = v }},
		{"Academic background", components.NewChoice(onOff, boolValue(o.Academic)),
			func(o *prompts.Options, v string) { o.Academic = v == "On" }},
		{"Naturalness check", components.NewChoice(onOff, boolValue(o.Naturalness)),
			func(o *prompts.Options, v string) { o.Naturalness = v == "On" }},
		{"Topic strictness", components.NewChoice(config.Strictness, o.Strictness),
			func(o *prompts.Options, v string) { o.Strictness = v }},
	}}
}

// options folds the panel into o.
func (p advancedPanel) options(o prompts.Options) prompts.Options {
	for _, r := range p.rows {
		r.apply(&o, r.choice.Value())
	}
	return o
}

func (e *Editor) handleAdvancedKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	p := &e.advanced
	switch msg.String() {
	case "esc", "ctrl+a", "enter":
		e.mode = modeNormal
		return e, e.focusField(e.focus)
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return e, nil
	case "down", "j", "tab":
		if p.cursor < len(p.rows)-1 {
			p.cursor++
		}
		return e, nil
	}
	var changed bool
	p.rows[p.cursor].choice, changed = p.rows[p.cursor].choice.Update(msg)
	if !changed {
		return e, nil
	}
	e.sess.SetOptions(p.options(e.sess.Options))
	return e, e.schedulePreview()
}

func (p advancedPanel) view(width int) string {
	var b strings.Builder
	b.WriteString(theme.Selected.Render("Advanced options"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Applied to every generation and regeneration."))
	b.WriteString("\n\n")
	for i, r := range p.rows {
		label := theme.Label.Width(22).Render(r.label)
		if i == p.cursor {
			label = theme.FocusedLabel.Width(22).Render(r.label)
		}
		b.WriteString(fmt.Sprintf("%s %s\n", label, r.choice.View(i == p.cursor)))
	}
	return theme.FocusedCard.Width(min(width-4, 100)).Render(b.String())
}
