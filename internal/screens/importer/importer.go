// Package importer is the screen that turns a scanned page or PDF into
// unit inputs through OCR and topic extraction.
package importer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/logging"
	"github.com/aerladis/eflwizard/internal/ocr"
	"github.com/aerladis/eflwizard/internal/router"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/topics"
	"github.com/aerladis/eflwizard/internal/ui/components"
	"github.com/aerladis/eflwizard/internal/ui/layout"
	"github.com/aerladis/eflwizard/internal/ui/theme"
)

// Importer runs OCR and topic extraction. *ocr.Importer implements it.
type Importer interface {
	Import(ctx context.Context, path string, progress ocr.Progress) (topics.Extraction, string, error)
}

// ImportedMsg carries a finished extraction to the editor below.
type ImportedMsg struct {
	Path       string
	Extraction topics.Extraction
}

func (ImportedMsg) Broadcast() {}

type progressMsg struct {
	run  int
	text string
	next <-chan tea.Msg
}

type doneMsg struct {
	run        int
	path       string
	extraction topics.Extraction
	raw        string
	err        error
}

// Screen asks for a file and runs the import.
type Screen struct {
	importer Importer
	logger   *zap.Logger
	input    components.TextInput
	spinner  components.Spinner
	lines    []string
	errMsg   string
	running  bool
	run      int
	cancel   context.CancelFunc
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Closer = (*Screen)(nil)

// New creates the import screen.
func New(im Importer, logger *zap.Logger) *Screen {
	s := &Screen{
		importer: im,
		logger:   logging.OrNop(logger),
		input:    components.NewTextInput("Path to an image (PNG, JPG, BMP, TIFF, GIF) or PDF", 0),
		spinner:  components.Spinner{ID: 2},
	}
	return s
}

func (s *Screen) Init() tea.Cmd {
	return s.input.Focus()
}

func (s *Screen) Title() string {
	return "Import from document"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.running {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Start OCR"},
		{Key: "Esc", Description: "Back"},
	}
}

// Close cancels a running import when the screen is popped.
func (s *Screen) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case progressMsg:
		if msg.run != s.run {
			return s, nil
		}
		s.lines = append(s.lines, msg.text)
		return s, screen.Listen(msg.next)

	case doneMsg:
		return s.handleDone(msg)

	case ImportedMsg:
		// Our own result on its way to the editor; leave the stack.
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case tea.KeyMsg:
		if s.running {
			return s, nil
		}
		if msg.String() == "enter" {
			return s.submit()
		}
	}

	if s.running {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	path := CleanPath(s.input.Value())
	s.errMsg = ""
	if path == "" {
		s.errMsg = "Enter a file path."
		return s, nil
	}
	if _, err := ocr.Kind(path); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	if _, err := os.Stat(path); err != nil {
		s.errMsg = fmt.Sprintf("Cannot open %s: %v", path, err)
		return s, nil
	}
	s.lines = nil
	s.running = true
	ch := s.start(path)
	return s, tea.Batch(s.spinner.Start(), screen.Listen(ch))
}

// start runs the import in the background and streams progress on the
// returned channel; the final message is a doneMsg.
func (s *Screen) start(path string) <-chan tea.Msg {
	s.run++
	run := s.run
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	events := make(chan tea.Msg, 4)
	send := func(m tea.Msg) {
		select {
		case events <- m:
		case <-ctx.Done():
		}
	}
	go func() {
		defer close(events)
		ext, raw, err := s.importer.Import(ctx, path, func(text string) {
			send(progressMsg{run: run, text: text, next: events})
		})
		send(doneMsg{run: run, path: path, extraction: ext, raw: raw, err: err})
	}()
	return events
}

func (s *Screen) handleDone(msg doneMsg) (screen.Screen, tea.Cmd) {
	if msg.run != s.run {
		return s, nil
	}
	s.running = false
	s.spinner.Stop()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if msg.err != nil {
		s.logger.Warn("import failed", zap.String("path", msg.path), zap.Error(msg.err))
		s.errMsg = importError(msg.err)
		return s, nil
	}
	s.logger.Info("import finished",
		zap.String("path", msg.path),
		zap.Int("ocr_chars", len(msg.raw)),
		zap.String("title", msg.extraction.Title))
	imported := ImportedMsg{Path: msg.path, Extraction: msg.extraction}
	return s, func() tea.Msg { return imported }
}

func importError(err error) string {
	switch {
	case errors.Is(err, ocr.ErrNoText), errors.Is(err, ocr.ErrUnsupportedFile):
		return err.Error()
	case errors.Is(err, context.Canceled):
		return "Import cancelled."
	}
	return "OCR failed: " + strings.TrimPrefix(err.Error(), "OCR failed: ")
}

// CleanPath accepts what a terminal produces when a file is dropped onto
// it: surrounding quotes, escaped spaces or a file:// URL.
func CleanPath(raw string) string {
	p := strings.TrimSpace(raw)
	p = strings.Trim(p, `"'`)
	if strings.HasPrefix(p, "file://") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
		}
	}
	p = strings.ReplaceAll(p, `\ `, " ")
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[2:])
		}
	}
	return p
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Load the unit title, topics and vocabulary from a scanned page or PDF."))
	b.WriteString("\n\n")

	fieldWidth := min(width-8, 90)
	s.input.SetWidth(fieldWidth - 4)
	card := theme.FocusedCard
	if s.running {
		card = theme.Card
	}
	b.WriteString(lipgloss.NewStyle().PaddingLeft(2).Render(card.Width(fieldWidth).Render(s.input.View())))
	b.WriteString("\n\n")

	for i, line := range s.lines {
		prefix := "  ✓ "
		if i == len(s.lines)-1 && s.running {
			prefix = "  " + s.spinner.View() + " "
		}
		b.WriteString(theme.Body.Render(prefix + line))
		b.WriteString("\n")
	}
	if s.running && len(s.lines) == 0 {
		b.WriteString("  " + s.spinner.View() + " " + theme.Hint.Render("Working..."))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n  ")
		b.WriteString(theme.Banner.Render(s.errMsg))
		b.WriteString("\n")
	}
	return b.String()
}
