package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/hangar/internal/ui/style"
)

var (
	availableStyle = lipgloss.NewStyle().
			Foreground(style.Slate)

	activeStyle = lipgloss.NewStyle().
			Foreground(style.Iris).
			Bold(true)

	installedStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	invalidStyle = lipgloss.NewStyle().
			Foreground(style.Red).
			Faint(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(style.Iris).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Iris).
			Foreground(style.White)

	infoStyle = lipgloss.NewStyle().
			Foreground(style.Blue)

	errorStyle = lipgloss.NewStyle().
			Foreground(style.Red).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(style.Slate).
			Faint(true)
)
