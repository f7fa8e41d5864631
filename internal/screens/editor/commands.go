package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/docx"
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/store"
	"github.com/aerladis/eflwizard/internal/ui/components"
)

// begin starts a cancellable job and returns its id and context.
func (e *Editor) begin(label string) (int, context.Context) {
	e.cancelWork()
	e.gen++
	e.busy = label
	e.errMsg = ""
	ctx, cancel := context.WithTimeout(context.Background(), e.deps.Timeout)
	e.cancel = cancel
	return e.gen, ctx
}

// cancelWork abandons the running job; its result will not match e.gen.
func (e *Editor) cancelWork() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	if e.busy != "" {
		e.gen++
	}
	e.busy = ""
	if !e.rendering {
		e.spinner.Stop()
	}
}

func (e *Editor) finish() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.busy = ""
	if !e.rendering {
		e.spinner.Stop()
	}
}

func (e *Editor) generate() (screen.Screen, tea.Cmd) {
	if err := e.sess.RequireTitle(); err != nil {
		e.showError("generating questions", err)
		return e, nil
	}
	req := e.sess.Inputs()
	e.syncFields()
	gen, ctx := e.begin("Generating 15 questions...")
	g := e.deps.Generator
	e.logger.Info("generate batch", zap.String("title", req.Title), zap.String("level", req.Level), zap.String("tier", req.Tier))
	return e, tea.Batch(e.spinner.Start(), func() tea.Msg {
		qs, err := g.GenerateBatch(ctx, req)
		return batchDoneMsg{gen: gen, questions: qs, err: err}
	})
}

func (e *Editor) handleBatch(msg batchDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != e.gen {
		return e, nil
	}
	e.finish()
	if msg.err != nil {
		e.logger.Warn("generation failed", zap.Error(msg.err))
		e.showError("generating questions", msg.err)
		return e, nil
	}
	e.sess.ApplyBatch(msg.questions)
	e.row = 0
	return e, tea.Batch(e.setStatus("Generated 15 questions."), e.previewNow())
}

// openFeedback asks why the selected question is being replaced.
func (e *Editor) openFeedback() (screen.Screen, tea.Cmd) {
	if err := e.sess.RequireTitle(); err != nil {
		e.showError("regenerating questions", err)
		return e, nil
	}
	e.blurAll()
	e.mode = modeFeedback
	e.reason.SetValue("")
	e.buttons = components.NewButtonRow(
		components.NewButton("Regenerate", func() tea.Cmd { return e.regenerate(true) }),
		components.NewButton("Skip feedback", func() tea.Cmd { return e.regenerate(false) }),
		components.NewButton("Cancel", func() tea.Cmd { e.closeOverlay(); return nil }),
	)
	return e, e.reason.Focus()
}

func (e *Editor) handleFeedbackKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch msg.String() {
	case "esc":
		e.closeOverlay()
		return e, nil
	case "tab":
		switch {
		case e.reason.Focused():
			e.reason.Blur()
			e.buttons.SetFocus(0)
			return e, nil
		case e.buttons.Focus() == len(e.buttons.Buttons)-1:
			e.buttons.SetFocus(0)
			return e, e.reason.Focus()
		}
		e.buttons, cmd = e.buttons.Update(msg)
		return e, cmd
	case "enter":
		if e.reason.Focused() {
			return e, e.regenerate(true)
		}
		e.buttons, cmd = e.buttons.Update(msg)
		return e, cmd
	case "left", "right", "shift+tab":
		if !e.reason.Focused() {
			e.buttons, cmd = e.buttons.Update(msg)
			return e, cmd
		}
	}
	if e.reason.Focused() {
		e.reason, cmd = e.reason.Update(msg)
	}
	return e, cmd
}

func (e *Editor) closeOverlay() {
	e.reason.Blur()
	e.pathIn.Blur()
	e.mode = modeNormal
}

// regenerate replaces the selected question. With logFeedback the old
// question and the reason are recorded first; the reason also goes into
// the prompt.
func (e *Editor) regenerate(logFeedback bool) tea.Cmd {
	idx := e.row
	reason := strings.TrimSpace(e.reason.Value())
	e.closeOverlay()

	old := e.sess.Questions[idx]
	if logFeedback && e.deps.Feedback != nil && !old.Placeholder {
		if err := e.deps.Feedback.Record(context.Background(), e.sess.ID, idx, old.Text, reason); err != nil {
			e.logger.Warn("record feedback", zap.Error(err))
		}
	}
	if !logFeedback {
		reason = ""
	}

	req := e.sess.Inputs()
	e.syncFields()
	gen, ctx := e.begin(fmt.Sprintf("Regenerating question %d...", idx+1))
	g := e.deps.Generator
	return tea.Batch(e.spinner.Start(), func() tea.Msg {
		q, err := g.Regenerate(ctx, req, idx, reason)
		return singleDoneMsg{gen: gen, index: idx, question: q, err: err}
	})
}

func (e *Editor) handleSingle(msg singleDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != e.gen {
		return e, nil
	}
	e.finish()
	if msg.err != nil {
		e.logger.Warn("regeneration failed", zap.Int("index", msg.index), zap.Error(msg.err))
		e.showError("regenerating questions", msg.err)
		return e, nil
	}
	if err := e.sess.ApplySingle(msg.index, msg.question); err != nil {
		e.errMsg = "No result: the model returned empty text."
		return e, nil
	}
	return e, tea.Batch(e.setStatus(fmt.Sprintf("Question %d replaced.", msg.index+1)), e.previewNow())
}

// openExport asks for the output path, defaulting to "<title>.<ext>" in
// the export directory.
func (e *Editor) openExport(format string) (screen.Screen, tea.Cmd) {
	if err := e.sess.RequireTitle(); err != nil {
		e.showError("exporting", err)
		return e, nil
	}
	e.blurAll()
	e.mode = modeExport
	e.exportAs = format
	e.pathIn.SetValue(DefaultExportPath(e.deps.ExportDir, e.sess.Title, format))
	return e, e.pathIn.Focus()
}

func (e *Editor) handleExportKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		e.closeOverlay()
		return e, nil
	case "enter":
		path := strings.TrimSpace(e.pathIn.Value())
		if path == "" {
			return e, nil
		}
		ext := "." + e.exportAs
		if !strings.EqualFold(filepath.Ext(path), ext) {
			path += ext
		}
		e.closeOverlay()
		return e, e.export(path, e.exportAs)
	}
	var cmd tea.Cmd
	e.pathIn, cmd = e.pathIn.Update(msg)
	return e, cmd
}

func (e *Editor) export(path, format string) tea.Cmd {
	content := e.sess.Content()
	label := "Exporting DOCX..."
	if format == "pdf" {
		label = "Exporting PDF..."
	}
	gen, ctx := e.begin(label)
	tmpl, conv, method := e.deps.Template, e.deps.PDF, e.pdfMethod
	return tea.Batch(e.spinner.Start(), func() tea.Msg {
		if format == "docx" {
			err := docx.ExportFile(ctx, tmpl, path, content)
			return exportDoneMsg{gen: gen, path: path, format: format, err: err}
		}
		used, err := exportPDF(ctx, conv, method, tmpl, path, content)
		return exportDoneMsg{gen: gen, path: path, format: format, method: used, err: err}
	})
}

// exportPDF fills the template into a scratch DOCX and converts it.
func exportPDF(ctx context.Context, conv PDFConverter, method pdfconv.Method, tmpl, out string, c docx.Content) (pdfconv.Method, error) {
	if conv == nil {
		return "", fmt.Errorf("PDF export is not available")
	}
	dir, err := os.MkdirTemp("", "eflwizard_pdf_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)
	docxPath := filepath.Join(dir, "worksheet.docx")
	if err := docx.ExportFile(ctx, tmpl, docxPath, c); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return conv.Convert(ctx, method, pdfconv.Job{DocxPath: docxPath, PDFPath: out, Content: c})
}

func (e *Editor) handleExport(msg exportDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.gen != e.gen {
		return e, nil
	}
	e.finish()
	if msg.err != nil {
		e.logger.Warn("export failed", zap.String("path", msg.path), zap.Error(msg.err))
		e.errMsg = fmt.Sprintf("Export failed: %v", msg.err)
		return e, nil
	}
	e.logger.Info("exported", zap.String("path", msg.path), zap.String("format", msg.format))
	if repo := e.deps.Exports; repo != nil {
		data := store.ExportData{
			SessionID:     e.sess.ID,
			Title:         e.sess.Title,
			Level:         e.sess.Level,
			Format:        msg.format,
			Method:        string(msg.method),
			Path:          msg.path,
			ContentKey:    e.sess.Key(),
			QuestionCount: len(e.sess.Existing()),
		}
		if err := repo.RecordExport(context.Background(), data); err != nil {
			e.logger.Warn("record export", zap.Error(err))
		}
	}
	text := "Saved " + msg.path
	if msg.method != "" {
		text += fmt.Sprintf(" (%s)", msg.method)
	}
	return e, e.setStatus(text)
}

// DefaultExportPath builds "<dir>/<title>.<ext>" with characters that
// are unsafe in file names replaced.
func DefaultExportPath(dir, title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "worksheet"
	}
	return filepath.Join(dir, name+"."+ext)
}

// togglePreview shows or hides the page preview, rendering when the
// current content has none yet.
func (e *Editor) togglePreview() (screen.Screen, tea.Cmd) {
	if e.previewOpen {
		e.previewOpen = false
		return e, nil
	}
	e.previewOpen = true
	e.previewErr = ""
	if res, ok := e.currentPreview(); ok && res.Key == e.sess.Key() {
		return e, nil
	}
	return e, e.renderPreview()
}

func (e *Editor) currentPreview() (preview.Result, bool) {
	if e.deps.Tracker == nil {
		return preview.Result{}, false
	}
	return e.deps.Tracker.Current()
}

// previewNow re-renders at once when the preview is open.
func (e *Editor) previewNow() tea.Cmd {
	if !e.previewOpen {
		return nil
	}
	return e.renderPreview()
}

// schedulePreview re-renders once edits have settled.
func (e *Editor) schedulePreview() tea.Cmd {
	if !e.previewOpen {
		return nil
	}
	rev := e.sess.Revision()
	return tea.Tick(previewDelay, func(time.Time) tea.Msg { return previewDueMsg{rev: rev} })
}

func (e *Editor) renderPreview() tea.Cmd {
	if e.deps.Preview == nil || e.deps.Tracker == nil {
		e.previewErr = "Preview is not available."
		return nil
	}
	key := e.sess.Key()
	e.deps.Tracker.Want(key)
	e.previewKey = key
	e.rendering = true
	e.previewErr = ""
	req := preview.Request{Key: key, Content: e.sess.Content(), Method: e.pdfMethod, DPR: e.deps.DPR}
	r := e.deps.Preview
	return tea.Batch(e.spinner.Start(), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		res, err := r.Render(ctx, req)
		res.Key = req.Key
		return previewDoneMsg{key: req.Key, result: res, err: err}
	})
}

func (e *Editor) handlePreview(msg previewDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.err != nil {
		if msg.key != e.previewKey {
			return e, nil
		}
		e.stopRendering()
		e.previewErr = msg.err.Error()
		e.logger.Warn("preview failed", zap.Error(msg.err))
		return e, nil
	}
	if !e.deps.Tracker.Accept(msg.result) {
		e.logger.Debug("stale preview dropped", zap.String("key", msg.key))
		return e, nil
	}
	e.stopRendering()
	e.thumbKey, e.thumb = "", ""
	return e, nil
}

func (e *Editor) stopRendering() {
	e.rendering = false
	if e.busy == "" {
		e.spinner.Stop()
	}
}
