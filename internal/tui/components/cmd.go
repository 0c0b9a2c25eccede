package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Debounce triggers a command after the duration. Callers collapse rapid
// re-invocations by tagging the message and ignoring stale ones on arrival.
func Debounce(duration time.Duration, fn func() tea.Msg) tea.Cmd {
	if duration <= 0 {
		return func() tea.Msg { return fn() }
	}
	return tea.Tick(duration, func(time.Time) tea.Msg { return fn() })
}

// DebounceMsg returns a tea.Cmd that emits the provided message after the delay.
func DebounceMsg(duration time.Duration, msg tea.Msg) tea.Cmd {
	return Debounce(duration, func() tea.Msg { return msg })
}
