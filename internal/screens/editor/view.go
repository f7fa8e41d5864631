package editor

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/questions"
	"github.com/aerladis/eflwizard/internal/ui/layout"
	"github.com/aerladis/eflwizard/internal/ui/theme"
)

func (e *Editor) label(f field, text string) string {
	if e.focus == f && e.mode == modeNormal {
		return theme.FocusedLabel.Render(text)
	}
	return theme.Label.Render(text)
}

func (e *Editor) View(width, height int) string {
	inner := width - 4
	topicRows := 4
	if layout.IsCompactHeight(height + layout.HeaderHeight + layout.FooterHeight) {
		topicRows = 2
	}
	e.title.SetWidth(inner - 12)
	e.vocab.SetWidth(inner - 12)
	e.topics.SetSize(inner-12, topicRows)

	var top strings.Builder
	top.WriteString(e.label(fieldTitle, "Title") + " " + e.title.View() + "\n")
	top.WriteString(e.label(fieldLevel, "Level") + " " + e.level.View(e.focus == fieldLevel && e.mode == modeNormal))
	top.WriteString("   " + e.label(fieldTier, "Tier") + " " + e.tier.View(e.focus == fieldTier && e.mode == modeNormal) + "\n")
	top.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, e.label(fieldTopics, "Topics")+" ", e.topics.View()) + "\n")
	top.WriteString(e.label(fieldVocab, "Vocab") + " " + e.vocab.View() + "\n")

	bottom := e.renderBottom(inner)
	header := e.renderSectionHeader(inner)

	used := lipgloss.Height(top.String()) + lipgloss.Height(header) + lipgloss.Height(bottom) + 1
	avail := max(height-used, 3)

	var middle string
	switch {
	case e.mode == modeAdvanced:
		middle = e.advanced.view(inner)
	case e.previewOpen:
		middle = e.renderPreviewPane(inner, avail)
	default:
		middle = e.renderRows(inner, avail)
	}

	body := top.String() + "\n" + header + "\n" + middle
	if gap := height - lipgloss.Height(body) - lipgloss.Height(bottom); gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(body + bottom)
}

func (e *Editor) renderSectionHeader(width int) string {
	left := "Questions"
	if e.previewOpen {
		left = "Preview"
	}
	left = theme.Selected.Render(left)
	o := e.sess.Options
	right := theme.Hint.Render(fmt.Sprintf("%s · Bloom's %s · PDF %s", o.Style, o.Blooms, e.pdfMethod))
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right + "\n" +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width, 0)))
}

// renderRows shows a window of the fifteen rows that keeps the selected
// row visible.
func (e *Editor) renderRows(width, height int) string {
	n := min(height, questions.Count)
	start := 0
	if e.row >= n {
		start = e.row - n + 1
	}
	var b strings.Builder
	for i := start; i < start+n && i < questions.Count; i++ {
		q := e.sess.Questions[i]
		selected := i == e.row && e.focus == fieldQuestions
		marker := "  "
		if selected {
			marker = "▸ "
		}
		num := fmt.Sprintf("%2d. ", i+1)
		textWidth := max(width-lipgloss.Width(marker+num)-2, 10)

		var line string
		switch {
		case selected && e.mode == modeEditRow:
			e.rowInput.SetWidth(textWidth)
			line = e.rowInput.View()
		case q.Placeholder:
			line = theme.Placeholder.Render(truncate(q.Text, textWidth))
		case q.Regenerated:
			line = theme.Regenerated.Render(truncate(q.Text, textWidth-2) + " ↻")
		case selected:
			line = theme.Selected.Render(truncate(q.Text, textWidth))
		default:
			line = theme.Unselected.Render(truncate(q.Text, textWidth))
		}
		style := theme.Unselected
		if selected {
			style = theme.Selected
		}
		b.WriteString(style.Render(marker+num) + line + "\n")
	}
	return b.String()
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}

func (e *Editor) renderPreviewPane(width, height int) string {
	res, ok := e.currentPreview()
	switch {
	case e.previewErr != "":
		return theme.Banner.Render("Preview generation failed") + "\n" + theme.Hint.Render(e.previewErr)
	case !ok || res.Key != e.sess.Key():
		return "  " + e.spinner.View() + " " + theme.Hint.Render("Rendering exact preview...")
	}

	rows := max(height-2, 4)
	cols := width
	key := fmt.Sprintf("%s:%dx%d", res.PNGPath, cols, rows)
	if e.thumbKey != key {
		thumb, err := preview.LoadThumbnail(res.PNGPath, cols, rows)
		if err != nil {
			return theme.Banner.Render("Preview unavailable") + "\n" + theme.Hint.Render(err.Error())
		}
		e.thumbKey, e.thumb = key, thumb
	}
	caption := theme.Hint.Render(fmt.Sprintf("%s  %d×%d px via %s", res.PNGPath, res.Width, res.Height, res.Method))
	return e.thumb + "\n" + caption
}

func (e *Editor) renderBottom(width int) string {
	var b strings.Builder
	switch e.mode {
	case modeFeedback:
		e.reason.SetWidth(width - 8)
		var d strings.Builder
		d.WriteString(theme.Selected.Render(fmt.Sprintf("Regenerate question %d", e.row+1)))
		d.WriteString("\n")
		d.WriteString(theme.Hint.Render(truncate(e.sess.Questions[e.row].Text, width-8)))
		d.WriteString("\n\n")
		d.WriteString(e.reason.View())
		d.WriteString("\n\n")
		d.WriteString(e.buttons.View())
		b.WriteString(theme.FocusedCard.Width(width).Render(d.String()))
		b.WriteString("\n")
	case modeExport:
		e.pathIn.SetWidth(width - 8)
		var d strings.Builder
		d.WriteString(theme.Selected.Render("Export " + strings.ToUpper(e.exportAs)))
		if e.exportAs == "pdf" {
			d.WriteString(theme.Hint.Render(fmt.Sprintf("  (method: %s)", e.pdfMethod)))
		}
		d.WriteString("\n")
		d.WriteString(e.pathIn.View())
		b.WriteString(theme.FocusedCard.Width(width).Render(d.String()))
		b.WriteString("\n")
	}

	switch {
	case e.errMsg != "":
		b.WriteString(theme.Banner.Render(truncate(e.errMsg, width-2)))
	case e.busy != "":
		b.WriteString(e.spinner.View() + " " + theme.Body.Render(e.busy) + theme.Hint.Render("  Esc to cancel"))
	case e.status != "":
		b.WriteString(theme.Status.Render(truncate(e.status, width)))
	default:
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d questions ready", len(e.sess.Existing()), questions.Count)))
	}
	return b.String()
}
