// Package ui renders the desktop: window chrome around plugin content, the
// desktop surface with its shell furniture, and transient notifications.
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/GriffinCanCode/TermDesk/internal/events"
)

// BusMsg wraps a bus event for delivery into the tea update loop.
type BusMsg events.Event

// toastExpiredMsg removes one notification after its timeout.
type toastExpiredMsg struct{ seq int }

// listen returns a command that yields the next event from a subscription.
// Re-issued after every delivery so the pump runs for the program's lifetime.
func listen(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return BusMsg(ev)
	}
}
