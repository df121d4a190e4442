// Package tui provides the interactive terminal interface of the launcher.
package tui

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/hangar/internal/ui/output"
)

// DefaultTickInterval is how often the interface re-reads state.
const DefaultTickInterval = 100 * time.Millisecond

// NewModel creates a Model driving c and sets the color profile for w.
func NewModel(w io.Writer, c Controller) *Model {
	if w == nil {
		w = os.Stdout
	}
	lipgloss.SetColorProfile(output.New(w).Profile)

	return &Model{
		Controller:   c,
		TickInterval: DefaultTickInterval,
	}
}
