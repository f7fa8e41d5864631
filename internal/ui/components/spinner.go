package components

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/aerladis/eflwizard/internal/ui/theme"
)

const spinnerInterval = 100 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerTickMsg advances a Spinner. ID keeps two spinners on the same
// screen from driving each other.
type SpinnerTickMsg struct {
	ID   int
	Time time.Time
}

// Spinner is a small busy indicator driven by tea.Tick.
type Spinner struct {
	ID     int
	frame  int
	active bool
}

// Start begins ticking. Starting a running spinner is a no-op.
func (s *Spinner) Start() tea.Cmd {
	if s.active {
		return nil
	}
	s.active = true
	return s.tick()
}

// Stop halts the spinner; the next tick is ignored.
func (s *Spinner) Stop() { s.active = false }

// Active reports whether the spinner is running.
func (s Spinner) Active() bool { return s.active }

func (s Spinner) tick() tea.Cmd {
	id := s.ID
	return tea.Tick(spinnerInterval, func(t time.Time) tea.Msg {
		return SpinnerTickMsg{ID: id, Time: t}
	})
}

// Update advances on its own ticks.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	m, ok := msg.(SpinnerTickMsg)
	if !ok || m.ID != s.ID || !s.active {
		return s, nil
	}
	s.frame = (s.frame + 1) % len(spinnerFrames)
	return s, s.tick()
}

// View renders the current frame, or nothing when stopped.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	return lipgloss.NewStyle().Foreground(theme.Accent).Render(spinnerFrames[s.frame])
}
