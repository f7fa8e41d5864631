// Package app hosts the root Bubble Tea model: the screen stack inside the
// header and footer frame, plus the background services that feed it.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/logging"
	"github.com/aerladis/eflwizard/internal/router"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/screens/about"
	"github.com/aerladis/eflwizard/internal/screens/editor"
	"github.com/aerladis/eflwizard/internal/selfupdate"
	"github.com/aerladis/eflwizard/internal/store"
	"github.com/aerladis/eflwizard/internal/ui/layout"
	"github.com/aerladis/eflwizard/internal/watch"
)

// Options configure the TUI. Root is the first screen, normally the
// editor. The update fields are optional; without a Checker no background
// checks run.
type Options struct {
	Root    screen.Screen
	Version string

	Checker        *selfupdate.Checker
	UpdateRepo     store.UpdateRepo
	UpdateSchedule string
	CheckOnStartup bool

	// TemplatePath is watched; a change re-renders an open preview.
	TemplatePath string

	Logger *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	version string
	notice  string
	width   int
	height  int
}

func newAppModel(root screen.Screen, version string) AppModel {
	return AppModel{
		router:  router.New(root),
		version: version,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case about.AvailableMsg:
		if msg.Release != nil && msg.Release.Manifest != nil {
			m.notice = fmt.Sprintf("Update %s available (Ctrl+U)", msg.Release.Manifest.Version)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				if p, ok := m.router.Active().(screen.Pinned); ok && p.Pinned() {
					return m, nil
				}
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.frame())
	return v
}

// frame renders the header, the active screen and the footer.
func (m AppModel) frame() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.version, m.notice, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		hints := p.KeyHints()
		if m.router.Depth() > 1 {
			hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
		}
		return hints
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
}

// Run starts the Bubble Tea program along with the background update
// checks and the template watcher, and stops them when the program exits.
func Run(ctx context.Context, opts Options) error {
	logger := logging.OrNop(opts.Logger).Named("app")
	p := tea.NewProgram(newAppModel(opts.Root, opts.Version), tea.WithContext(ctx))

	if opts.Checker != nil {
		sched := selfupdate.NewScheduler(opts.Checker, selfupdate.SchedulerOptions{
			Spec:           opts.UpdateSchedule,
			CheckOnStartup: opts.CheckOnStartup,
			Repo:           opts.UpdateRepo,
			Logger:         opts.Logger,
			Notify: func(rel *selfupdate.Release) {
				p.Send(about.AvailableMsg{Release: rel})
			},
		})
		if err := sched.Start(ctx); err != nil {
			logger.Warn("start update checks", zap.Error(err))
		} else {
			defer sched.Stop()
		}
	}

	if opts.TemplatePath != "" {
		w, err := watch.New([]string{opts.TemplatePath}, watch.Options{
			Logger: opts.Logger,
			OnChange: func(path string) {
				p.Send(editor.TemplateChangedMsg{Path: path})
			},
		})
		if err == nil {
			err = w.Start(ctx)
		}
		if err != nil {
			logger.Warn("watch template", zap.String("path", opts.TemplatePath), zap.Error(err))
		} else {
			defer w.Stop()
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
