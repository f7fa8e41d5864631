// Package editor is the main screen: unit inputs, generation options and
// the fifteen question rows, with generation, regeneration, export and
// preview running in the background.
package editor

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/generator"
	"github.com/aerladis/eflwizard/internal/logging"
	"github.com/aerladis/eflwizard/internal/pdfconv"
	"github.com/aerladis/eflwizard/internal/preview"
	"github.com/aerladis/eflwizard/internal/questions"
	"github.com/aerladis/eflwizard/internal/router"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/screens/importer"
	"github.com/aerladis/eflwizard/internal/screens/methods"
	"github.com/aerladis/eflwizard/internal/session"
	"github.com/aerladis/eflwizard/internal/store"
	"github.com/aerladis/eflwizard/internal/ui/components"
	"github.com/aerladis/eflwizard/internal/ui/layout"
)

const (
	previewDelay  = 600 * time.Millisecond
	statusTimeout = 6 * time.Second
)

// FeedbackRecorder logs why a question was regenerated.
// *feedback.Recorder implements it.
type FeedbackRecorder interface {
	Record(ctx context.Context, sessionID string, index int, question, reason string) error
}

// PDFConverter turns a filled DOCX into a PDF. *pdfconv.Registry
// implements it.
type PDFConverter interface {
	Convert(ctx context.Context, method pdfconv.Method, job pdfconv.Job) (pdfconv.Method, error)
}

// PreviewRenderer renders page one of the worksheet.
// *preview.Renderer implements it.
type PreviewRenderer interface {
	Render(ctx context.Context, req preview.Request) (preview.Result, error)
}

// Deps are the services the editor drives. Exports and the screen
// factories are optional.
type Deps struct {
	Session   *session.Session
	Generator generator.Generator
	Feedback  FeedbackRecorder
	Exports   store.ExportRepo
	PDF       PDFConverter
	PDFMethod pdfconv.Method
	Preview   PreviewRenderer
	Tracker   *preview.Tracker
	Template  string
	ExportDir string
	DPR       float64
	Timeout   time.Duration

	NewImporter func() screen.Screen
	NewAbout    func() screen.Screen
	NewMethods  func(current pdfconv.Method) screen.Screen

	Logger *zap.Logger
}

type field int

const (
	fieldTitle field = iota
	fieldLevel
	fieldTier
	fieldTopics
	fieldVocab
	fieldQuestions
	fieldCount
)

type mode int

const (
	modeNormal mode = iota
	modeEditRow
	modeFeedback
	modeExport
	modeAdvanced
)

// Editor implements screen.Screen for the worksheet.
type Editor struct {
	deps   Deps
	sess   *session.Session
	logger *zap.Logger

	title  components.TextInput
	level  components.Choice
	tier   components.Choice
	topics components.TextArea
	vocab  components.TextInput

	focus field
	row   int
	mode  mode

	rowInput components.TextInput
	reason   components.TextInput
	buttons  components.ButtonRow
	pathIn   components.TextInput
	exportAs string
	advanced advancedPanel

	pdfMethod pdfconv.Method

	busy    string
	gen     int
	cancel  context.CancelFunc
	spinner components.Spinner

	previewOpen bool
	previewKey  string
	rendering   bool
	previewErr  string
	thumbKey    string
	thumb       string

	status    string
	statusSeq int
	errMsg    string
}

var _ screen.Screen = (*Editor)(nil)
var _ screen.KeyHintProvider = (*Editor)(nil)

// New creates the editor over deps.Session.
func New(deps Deps) *Editor {
	if deps.Timeout <= 0 {
		deps.Timeout = 2 * time.Minute
	}
	if deps.PDFMethod == "" {
		deps.PDFMethod = pdfconv.MethodAuto
	}
	e := &Editor{
		deps:      deps,
		sess:      deps.Session,
		logger:    logging.OrNop(deps.Logger).Named("editor"),
		title:     components.NewTextInput("Unit title, e.g. Looking Back", 120),
		level:     components.NewChoice(session.Levels, deps.Session.Level),
		tier:      components.NewChoice(session.Tiers, deps.Session.Tier),
		topics:    components.NewTextArea("Topics, one per line. A pasted unit block with \"Vocab:\" is parsed as a whole.", 4),
		vocab:     components.NewTextInput("Target vocabulary, comma separated", 0),
		rowInput:  components.NewTextInput("", 0),
		reason:    components.NewTextInput("What's wrong with this question? (optional)", 200),
		pathIn:    components.NewTextInput("", 0),
		pdfMethod: deps.PDFMethod,
		spinner:   components.Spinner{ID: 1},
	}
	e.advanced = newAdvancedPanel(deps.Session.Options)
	e.title.SetValue(deps.Session.Title)
	e.topics.SetValue(deps.Session.TopicsText)
	e.vocab.SetValue(deps.Session.VocabText)
	e.sess.OnChange = e.onSessionChange
	return e
}

func (e *Editor) Init() tea.Cmd {
	return e.focusField(fieldTitle)
}

func (e *Editor) Title() string {
	if e.sess.Title != "" {
		return e.sess.Title
	}
	return "New worksheet"
}

// onSessionChange drops the preview; it is re-rendered after edits settle
// when the preview is open.
func (e *Editor) onSessionChange() {
	if e.deps.Tracker != nil {
		e.deps.Tracker.Invalidate()
	}
	e.thumbKey, e.thumb = "", ""
}

func (e *Editor) KeyHints() []layout.KeyHint {
	switch e.mode {
	case modeEditRow:
		return []layout.KeyHint{{Key: "Enter", Description: "Save"}, {Key: "Esc", Description: "Cancel"}}
	case modeFeedback, modeExport:
		return []layout.KeyHint{{Key: "Tab", Description: "Next"}, {Key: "Enter", Description: "Confirm"}, {Key: "Esc", Description: "Cancel"}}
	case modeAdvanced:
		return []layout.KeyHint{{Key: "↑↓", Description: "Option"}, {Key: "←→", Description: "Change"}, {Key: "Esc", Description: "Close"}}
	}
	if e.busy != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}, {Key: "Ctrl+C", Description: "Quit"}}
	}
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Field"},
		{Key: "^G", Description: "Generate"},
		{Key: "^R", Description: "Regenerate"},
		{Key: "^E", Description: "DOCX"},
		{Key: "^P", Description: "PDF"},
		{Key: "^V", Description: "Preview"},
		{Key: "^O", Description: "Import"},
		{Key: "^A", Description: "Options"},
		{Key: "^U", Description: "Updates"},
	}
	return hints
}

func (e *Editor) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		e.spinner, cmd = e.spinner.Update(msg)
		return e, cmd

	case batchDoneMsg:
		return e.handleBatch(msg)

	case singleDoneMsg:
		return e.handleSingle(msg)

	case exportDoneMsg:
		return e.handleExport(msg)

	case previewDoneMsg:
		return e.handlePreview(msg)

	case previewDueMsg:
		if e.previewOpen && msg.rev == e.sess.Revision() {
			return e, e.renderPreview()
		}
		return e, nil

	case TemplateChangedMsg:
		e.logger.Info("template changed", zap.String("path", msg.Path))
		e.onSessionChange()
		if e.previewOpen {
			return e, e.renderPreview()
		}
		return e, nil

	case importer.ImportedMsg:
		e.sess.ApplyImport(msg.Extraction)
		e.syncFields()
		return e, tea.Batch(e.setStatus("Loaded title, topics and vocabulary from "+msg.Path), e.schedulePreview())

	case methods.SelectedMsg:
		e.pdfMethod = msg.Method
		e.onSessionChange()
		return e, e.setStatus(fmt.Sprintf("PDF method: %s", msg.Method))

	case statusClearMsg:
		if msg.seq == e.statusSeq {
			e.status = ""
		}
		return e, nil

	case tea.KeyMsg:
		return e.handleKey(msg)
	}

	return e.forward(msg)
}

// forward passes non-key messages such as cursor blinks and pastes to
// the focused input.
func (e *Editor) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	switch e.mode {
	case modeEditRow:
		e.rowInput, cmd = e.rowInput.Update(msg)
		return e, cmd
	case modeFeedback:
		e.reason, cmd = e.reason.Update(msg)
		return e, cmd
	case modeExport:
		e.pathIn, cmd = e.pathIn.Update(msg)
		return e, cmd
	case modeAdvanced:
		return e, nil
	}
	before := e.fieldValue()
	switch e.focus {
	case fieldTitle:
		e.title, cmd = e.title.Update(msg)
	case fieldTopics:
		e.topics, cmd = e.topics.Update(msg)
	case fieldVocab:
		e.vocab, cmd = e.vocab.Update(msg)
	}
	return e, tea.Batch(cmd, e.commitField(before))
}

func (e *Editor) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch e.mode {
	case modeEditRow:
		return e.handleEditRowKey(msg)
	case modeFeedback:
		return e.handleFeedbackKey(msg)
	case modeExport:
		return e.handleExportKey(msg)
	case modeAdvanced:
		return e.handleAdvancedKey(msg)
	}

	key := msg.String()
	if e.busy != "" {
		if key == "esc" {
			e.cancelWork()
			return e, e.setStatus("Cancelled.")
		}
		return e, nil
	}

	switch key {
	case "ctrl+g":
		return e.generate()
	case "ctrl+r":
		return e.openFeedback()
	case "ctrl+e":
		return e.openExport("docx")
	case "ctrl+p":
		return e.openExport("pdf")
	case "ctrl+v":
		return e.togglePreview()
	case "ctrl+o":
		return e.push(e.deps.NewImporter)
	case "ctrl+u":
		return e.push(e.deps.NewAbout)
	case "ctrl+t":
		if e.deps.NewMethods == nil {
			return e, nil
		}
		method := e.pdfMethod
		return e.push(func() screen.Screen { return e.deps.NewMethods(method) })
	case "ctrl+a":
		e.blurAll()
		e.mode = modeAdvanced
		return e, nil
	case "esc":
		e.errMsg = ""
		if e.previewOpen {
			e.previewOpen = false
		}
		return e, nil
	case "tab":
		return e, e.focusField((e.focus + 1) % fieldCount)
	case "shift+tab":
		return e, e.focusField((e.focus + fieldCount - 1) % fieldCount)
	}

	switch e.focus {
	case fieldLevel, fieldTier:
		return e.handleChoiceKey(msg)
	case fieldQuestions:
		return e.handleRowsKey(msg)
	case fieldTitle, fieldVocab:
		if key == "enter" || key == "down" {
			return e, e.focusField(e.focus + 1)
		}
		if key == "up" && e.focus > fieldTitle {
			return e, e.focusField(e.focus - 1)
		}
	}
	return e.forward(msg)
}

func (e *Editor) push(factory func() screen.Screen) (screen.Screen, tea.Cmd) {
	if factory == nil {
		return e, nil
	}
	s := factory()
	return e, func() tea.Msg { return router.PushScreenMsg{Screen: s} }
}

func (e *Editor) handleChoiceKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "down", "enter":
		return e, e.focusField(e.focus + 1)
	case "up":
		return e, e.focusField(e.focus - 1)
	}
	var changed bool
	if e.focus == fieldLevel {
		e.level, changed = e.level.Update(msg)
		if changed {
			e.sess.SetLevel(e.level.Value())
		}
	} else {
		e.tier, changed = e.tier.Update(msg)
		if changed {
			e.sess.SetTier(e.tier.Value())
		}
	}
	if changed {
		return e, e.schedulePreview()
	}
	return e, nil
}

func (e *Editor) handleRowsKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if e.row > 0 {
			e.row--
		} else {
			return e, e.focusField(fieldVocab)
		}
	case "down", "j":
		if e.row < questions.Count-1 {
			e.row++
		}
	case "home", "g":
		e.row = 0
	case "end", "G":
		e.row = questions.Count - 1
	case "enter":
		q := e.sess.Questions[e.row]
		e.rowInput.SetValue("")
		if !q.Placeholder {
			e.rowInput.SetValue(q.Text)
		}
		e.mode = modeEditRow
		return e, e.rowInput.Focus()
	}
	return e, nil
}

func (e *Editor) handleEditRowKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		e.rowInput.Blur()
		e.mode = modeNormal
		return e, nil
	case "enter":
		if err := e.sess.Edit(e.row, e.rowInput.Value()); err != nil {
			if errors.Is(err, questions.ErrEmpty) {
				e.errMsg = "A question cannot be empty."
			} else {
				e.errMsg = err.Error()
			}
			return e, nil
		}
		e.errMsg = ""
		e.rowInput.Blur()
		e.mode = modeNormal
		return e, e.schedulePreview()
	}
	var cmd tea.Cmd
	e.rowInput, cmd = e.rowInput.Update(msg)
	return e, cmd
}

// fieldValue returns the text of the focused text field.
func (e *Editor) fieldValue() string {
	switch e.focus {
	case fieldTitle:
		return e.title.Value()
	case fieldTopics:
		return e.topics.Value()
	case fieldVocab:
		return e.vocab.Value()
	}
	return ""
}

// commitField copies a changed text field into the session.
func (e *Editor) commitField(before string) tea.Cmd {
	after := e.fieldValue()
	if after == before {
		return nil
	}
	switch e.focus {
	case fieldTitle:
		e.sess.SetTitle(after)
	case fieldTopics:
		e.sess.SetTopics(after)
	case fieldVocab:
		e.sess.SetVocab(after)
	default:
		return nil
	}
	return e.schedulePreview()
}

// syncFields reloads the inputs from the session after it changed
// underneath them (import, title taken from a pasted block).
func (e *Editor) syncFields() {
	if e.title.Value() != e.sess.Title {
		e.title.SetValue(e.sess.Title)
	}
	if e.topics.Value() != e.sess.TopicsText {
		e.topics.SetValue(e.sess.TopicsText)
	}
	if e.vocab.Value() != e.sess.VocabText {
		e.vocab.SetValue(e.sess.VocabText)
	}
	e.level.Set(e.sess.Level)
	e.tier.Set(e.sess.Tier)
}

func (e *Editor) blurAll() {
	e.title.Blur()
	e.topics.Blur()
	e.vocab.Blur()
}

func (e *Editor) focusField(f field) tea.Cmd {
	if f < 0 {
		f = 0
	}
	if f >= fieldCount {
		f = fieldCount - 1
	}
	e.blurAll()
	e.focus = f
	switch f {
	case fieldTitle:
		return e.title.Focus()
	case fieldTopics:
		return e.topics.Focus()
	case fieldVocab:
		return e.vocab.Focus()
	}
	return nil
}

func (e *Editor) setStatus(s string) tea.Cmd {
	e.status = s
	e.statusSeq++
	seq := e.statusSeq
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

// showError puts err in the banner. The title check reads like the
// dialogs teachers already know from the desktop tool.
func (e *Editor) showError(action string, err error) {
	if errors.Is(err, session.ErrTitleRequired) {
		e.errMsg = fmt.Sprintf("Unit title required: enter a unit title before %s.", action)
		e.focusField(fieldTitle)
		return
	}
	e.errMsg = err.Error()
}
