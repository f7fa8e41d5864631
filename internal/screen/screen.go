// Package screen defines the contract between the router and each view.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/aerladis/eflwizard/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is implemented by screens that need to refresh when a screen
// above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

// BroadcastMsg marks results that must reach screens below the active one,
// such as a generation finishing while the about screen is open.
type BroadcastMsg interface {
	Broadcast()
}

// Closer is implemented by screens that own background work to cancel
// when they leave the stack.
type Closer interface {
	Close()
}

// Pinned is implemented by screens that must not be left with Esc while
// they are busy, such as an update being installed.
type Pinned interface {
	Pinned() bool
}
