package screen

import tea "charm.land/bubbletea/v2"

// Listen returns a command that delivers the next message from ch. Screens
// that stream progress from a worker re-issue it after every message; a
// closed channel yields nil.
func Listen(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
