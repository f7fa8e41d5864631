package app

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/aerladis/eflwizard/internal/router"
	"github.com/aerladis/eflwizard/internal/screen"
	"github.com/aerladis/eflwizard/internal/screens/about"
	"github.com/aerladis/eflwizard/internal/selfupdate"
	"github.com/aerladis/eflwizard/internal/ui/layout"
)

type stubScreen struct {
	title  string
	pinned bool
	keys   []string
	seen   []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok {
		s.keys = append(s.keys, k.String())
	}
	s.seen = append(s.seen, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string { return "body of " + s.title }
func (s *stubScreen) Title() string        { return s.title }
func (s *stubScreen) Pinned() bool         { return s.pinned }
func (s *stubScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "^G", Description: "Generate"}}
}

func esc() tea.KeyPressMsg { return tea.KeyPressMsg{Code: tea.KeyEscape} }

func TestEscAtRootReachesScreen(t *testing.T) {
	root := &stubScreen{title: "root"}
	m := newAppModel(root, "1.0.0")

	_, cmd := m.Update(esc())
	if cmd != nil {
		t.Error("expected no navigation at the root")
	}
	if len(root.keys) != 1 || root.keys[0] != "esc" {
		t.Errorf("expected root to get esc, got %v", root.keys)
	}
}

func TestEscPopsUnlessPinned(t *testing.T) {
	root := &stubScreen{title: "root"}
	top := &stubScreen{title: "top", pinned: true}
	m := newAppModel(root, "1.0.0")
	m.router.Push(top)

	_, cmd := m.Update(esc())
	if cmd != nil {
		t.Fatal("pinned screen must not be popped")
	}

	top.pinned = false
	_, cmd = m.Update(esc())
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(&stubScreen{title: "root"}, "1.0.0")
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestAvailableMsgSetsNoticeAndBroadcasts(t *testing.T) {
	root := &stubScreen{title: "root"}
	top := &stubScreen{title: "top"}
	m := newAppModel(root, "1.0.0")
	m.router.Push(top)

	rel := &selfupdate.Release{Manifest: &selfupdate.Manifest{Version: "1.2.0"}, Current: "1.0.0"}
	updated, _ := m.Update(about.AvailableMsg{Release: rel})
	m = updated.(AppModel)

	if !strings.Contains(m.notice, "1.2.0") {
		t.Errorf("unexpected notice %q", m.notice)
	}
	if len(root.seen) != 1 || len(top.seen) != 1 {
		t.Errorf("expected both screens to see the release, got %d and %d", len(root.seen), len(top.seen))
	}
}

func TestViewRendersFrame(t *testing.T) {
	m := newAppModel(&stubScreen{title: "Travel"}, "1.0.0")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(AppModel)

	out := m.frame()
	for _, want := range []string{"EFL Wizard", "Travel", "body of Travel", "Generate"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in view", want)
		}
	}
}

func TestViewTooSmall(t *testing.T) {
	m := newAppModel(&stubScreen{title: "x"}, "1.0.0")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	m = updated.(AppModel)
	if !strings.Contains(m.frame(), "Terminal too small") {
		t.Error("expected size warning")
	}
}
