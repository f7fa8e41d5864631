// Package about shows the running version and drives manual update checks
// and installs.
package about

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/aerladis/eflwizard/internal/logging"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/selfupdate"
	"github.com/aerladis/eflwizard/internal/store"
	"github.com/aerladis/eflwizard/internal/ui/components"
	"github.com/aerladis/eflwizard/internal/ui/layout"
	"github.com/aerladis/eflwizard/internal/ui/theme"
)

// Checker fetches the release manifest. *selfupdate.Checker implements it.
type Checker interface {
	Version() string
	Check(ctx context.Context) (*selfupdate.Release, error)
}

// Updater installs a release. *selfupdate.Updater implements it.
type Updater interface {
	Update(ctx context.Context, rel *selfupdate.Release, progress func(selfupdate.Progress)) error
	InProgress() bool
}

// AvailableMsg announces a newer release. The background scheduler sends
// it through the program; every screen on the stack sees it.
type AvailableMsg struct {
	Release *selfupdate.Release
}

func (AvailableMsg) Broadcast() {}

type checkedMsg struct {
	release *selfupdate.Release
	err     error
}

type progressMsg struct {
	progress selfupdate.Progress
	next     <-chan tea.Msg
}

type installedMsg struct {
	err error
}

type phase int

const (
	phaseIdle phase = iota
	phaseChecking
	phaseInstalling
	phaseInstalled
)

const (
	itemCheck = iota
	itemInstall
)

// Deps are the update services.
type Deps struct {
	Checker Checker
	Updater Updater
	Repo    store.UpdateRepo // optional
	Timeout time.Duration
	Logger  *zap.Logger
}

// Screen is the about and update view.
type Screen struct {
	deps     Deps
	release  *selfupdate.Release
	last     *store.UpdateCheckRecord
	phase    phase
	status   string
	errMsg   string
	progress selfupdate.Progress
	menu     components.Menu
	spinner  components.Spinner
	cancel   context.CancelFunc
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.Pinned = (*Screen)(nil)

type lastCheckMsg struct {
	record *store.UpdateCheckRecord
}

// New creates the screen. rel is a release already found in the
// background, or nil.
func New(deps Deps, rel *selfupdate.Release) *Screen {
	if deps.Timeout <= 0 {
		deps.Timeout = 20 * time.Second
	}
	deps.Logger = logging.OrNop(deps.Logger)
	s := &Screen{deps: deps, release: rel, spinner: components.Spinner{ID: 4}}
	s.menu = components.NewMenu([]components.MenuItem{
		{Label: "Check for updates", Action: s.check},
		{Label: "Install update", Action: s.install},
	})
	s.syncMenu()
	return s
}

func (s *Screen) Init() tea.Cmd {
	repo := s.deps.Repo
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		rec, err := repo.LastUpdateCheck(context.Background())
		if err != nil {
			return nil
		}
		return lastCheckMsg{record: rec}
	}
}

func (s *Screen) Title() string {
	return "About & updates"
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.phase == phaseInstalling {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

// Pinned keeps the screen on top while an update is being installed.
func (s *Screen) Pinned() bool {
	return s.phase == phaseInstalling
}

func (s *Screen) syncMenu() {
	busy := s.phase == phaseChecking || s.phase == phaseInstalling || s.deps.Updater.InProgress()
	s.menu.SetDisabled(itemCheck, busy)
	installable := s.release != nil && !busy && s.phase != phaseInstalled
	if s.release != nil {
		s.menu.Items[itemInstall].Label = "Install version " + s.release.Manifest.Version
	}
	s.menu.SetDisabled(itemInstall, !installable)
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case lastCheckMsg:
		s.last = msg.record
		return s, nil

	case AvailableMsg:
		if s.phase == phaseIdle {
			s.release = msg.Release
			s.syncMenu()
		}
		return s, nil

	case checkedMsg:
		return s.handleChecked(msg)

	case progressMsg:
		s.progress = msg.progress
		s.status = stageText(msg.progress)
		return s, screen.Listen(msg.next)

	case installedMsg:
		return s.handleInstalled(msg)

	case tea.KeyMsg:
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) check() tea.Cmd {
	s.phase = phaseChecking
	s.errMsg = ""
	s.status = "Checking for updates..."
	s.syncMenu()
	deps := s.deps
	return tea.Batch(s.spinner.Start(), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), deps.Timeout)
		defer cancel()
		rel, err := deps.Checker.Check(ctx)
		if rec, ok := selfupdate.CheckRecord(deps.Checker.Version(), rel, err); ok && deps.Repo != nil {
			if rerr := deps.Repo.RecordUpdateCheck(ctx, rec); rerr != nil {
				deps.Logger.Warn("record update check", zap.Error(rerr))
			}
		}
		return checkedMsg{release: rel, err: err}
	})
}

func (s *Screen) handleChecked(msg checkedMsg) (screen.Screen, tea.Cmd) {
	s.phase = phaseIdle
	s.spinner.Stop()
	switch {
	case msg.err == nil:
		s.release = msg.release
		s.status = fmt.Sprintf("Version %s is available.", msg.release.Manifest.Version)
	case errors.Is(msg.err, selfupdate.ErrAlreadyLatest):
		s.status = fmt.Sprintf("You're running the latest version (%s).", s.deps.Checker.Version())
	case errors.Is(msg.err, selfupdate.ErrDevBuild):
		s.status = "Development build: updates are disabled."
	default:
		s.status = ""
		s.errMsg = "Update check failed: " + msg.err.Error()
	}
	s.syncMenu()
	return s, nil
}

func (s *Screen) install() tea.Cmd {
	if s.release == nil {
		return nil
	}
	if s.deps.Updater.InProgress() {
		s.errMsg = selfupdate.ErrInProgress.Error()
		return nil
	}
	s.phase = phaseInstalling
	s.errMsg = ""
	s.progress = selfupdate.Progress{Stage: "download", Total: -1}
	s.status = "Starting download..."
	s.syncMenu()

	rel, up := s.release, s.deps.Updater
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	events := make(chan tea.Msg, 16)
	go func() {
		defer close(events)
		err := up.Update(ctx, rel, func(p selfupdate.Progress) {
			// Keep one slot free for the result; skipped ticks are
			// superseded by the next one anyway.
			if len(events) < cap(events)-1 {
				events <- progressMsg{progress: p, next: events}
			}
		})
		events <- installedMsg{err: err}
	}()
	return tea.Batch(s.spinner.Start(), screen.Listen(events))
}

func (s *Screen) handleInstalled(msg installedMsg) (screen.Screen, tea.Cmd) {
	s.spinner.Stop()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if msg.err != nil {
		s.phase = phaseIdle
		s.status = ""
		s.errMsg = "Update failed: " + msg.err.Error()
		s.deps.Logger.Warn("update failed", zap.Error(msg.err))
		s.syncMenu()
		return s, nil
	}
	s.phase = phaseInstalled
	s.status = fmt.Sprintf("Version %s installed. Restart EFL Wizard to finish the update.", s.release.Manifest.Version)
	s.deps.Logger.Info("update installed", zap.String("version", s.release.Manifest.Version))
	s.syncMenu()
	return s, nil
}

func stageText(p selfupdate.Progress) string {
	if p.Stage == "download" {
		return selfupdate.ProgressText(p)
	}
	if p.Message != "" {
		return p.Message
	}
	return p.Stage
}

func (s *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Width(width).Render("EFL Wizard"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(width).Render("Discussion questions for ESL units  ·  version " + s.deps.Checker.Version()))
	b.WriteString("\n\n")

	if s.last != nil {
		line := "Last checked " + s.last.Timestamp.Local().Format("2006-01-02 15:04")
		if s.last.ErrorMessage != "" {
			line += " (failed)"
		} else if s.last.LatestVersion != "" {
			line += ", latest " + s.last.LatestVersion
		}
		b.WriteString(theme.Hint.Render("  " + line))
		b.WriteString("\n\n")
	}

	if s.release != nil {
		b.WriteString(theme.Body.Render(fmt.Sprintf("  New version %s (you have %s)", s.release.Manifest.Version, s.release.Current)))
		b.WriteString("\n")
		if notes := s.release.Manifest.Notes.String(); notes != "" {
			for _, line := range strings.Split(notes, "\n") {
				b.WriteString(theme.Hint.Render("    " + line))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(s.menu.View())
	b.WriteString("\n")

	if s.phase == phaseInstalling && s.progress.Stage == "download" {
		bar := components.NewProgressBar("Download", s.progress.Fraction(), true, min(width-4, 70))
		b.WriteString("  " + bar.View())
		b.WriteString("\n")
	}
	if s.status != "" {
		prefix := "  "
		if s.spinner.Active() {
			prefix = "  " + s.spinner.View() + " "
		}
		style := theme.Body
		if s.phase == phaseInstalled {
			style = theme.Status
		}
		b.WriteString(prefix + style.Render(s.status))
		b.WriteString("\n")
	}
	if s.errMsg != "" {
		b.WriteString("\n  " + theme.Banner.Render(s.errMsg) + "\n")
	}
	return b.String()
}
