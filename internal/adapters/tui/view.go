package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/ui/status"
	"go.trai.ch/hangar/internal/ui/style"
)

const (
	keyColumnWidth = 24
	helpText       = "i install · u uninstall · a abort · enter launch · r refresh · q quit"
)

// View renders the version list with the current event and key help.
func (m *Model) View() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("HANGAR"))
	s.WriteString(helpStyle.Render(fmt.Sprintf("  %d versions", len(m.Rows))))
	s.WriteString("\n\n")

	if len(m.Rows) == 0 {
		s.WriteString(helpStyle.Render("No versions known yet. Press r to refresh.") + "\n")
	}

	start, end := 0, len(m.Rows)
	if m.ListHeight > 0 {
		start = min(m.ListOffset, end)
		end = min(start+m.ListHeight, end)
	}
	for i := start; i < end; i++ {
		s.WriteString(m.renderRow(i, m.Rows[i]) + "\n")
	}

	s.WriteString("\n" + m.eventLine() + "\n")
	s.WriteString(helpStyle.Render(helpText))
	return s.String()
}

func (m *Model) renderRow(index int, inst domain.Installation) string {
	rowStyle := kindStyle(inst)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render(style.Cursor + " ")
		if !inst.Kind.Active() && inst.Kind.Phase != domain.PhaseInstalled {
			rowStyle = selectedStyle
		}
	}

	content := fmt.Sprintf("%s %-*s %s", status.Icon(inst.Kind), keyColumnWidth, inst.Key(), status.Line(inst))
	if m.Width > 0 {
		content = lipgloss.NewStyle().MaxWidth(m.Width - lipgloss.Width(cursor)).Render(content)
	}
	return cursor + rowStyle.Render(content)
}

func (m *Model) eventLine() string {
	if !m.HasEvent {
		return ""
	}
	if m.Event.Level == domain.EventError {
		return errorStyle.Render(style.Cross + " " + m.Event.Message)
	}
	return infoStyle.Render(m.Event.Message)
}

func kindStyle(inst domain.Installation) lipgloss.Style {
	switch {
	case inst.Kind.Active():
		return activeStyle
	case inst.Kind.Phase == domain.PhaseInstalled:
		return installedStyle
	case inst.Version.Download.Kind == domain.SourceInvalid:
		return invalidStyle
	default:
		return availableStyle
	}
}
