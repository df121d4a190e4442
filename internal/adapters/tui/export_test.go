package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg builds the internal tick message.
func TickMsg(t time.Time) tea.Msg {
	return tickMsg(t)
}
