// Package status turns installation states into short human-readable text.
package status

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/ui/style"
)

// Icon returns the list glyph for a state.
func Icon(k domain.Kind) string {
	switch k.Phase {
	case domain.PhaseDownloading:
		return style.Down
	case domain.PhaseUnpacking:
		return style.Dot
	case domain.PhaseInstalled:
		return style.Check
	default:
		return style.Circle
	}
}

// Label names the phase of a state.
func Label(k domain.Kind) string {
	switch k.Phase {
	case domain.PhaseDownloading:
		return "downloading"
	case domain.PhaseUnpacking:
		return "unpacking"
	case domain.PhaseInstalled:
		return "installed"
	default:
		return "available"
	}
}

// Detail describes progress or size, or an empty string when there is nothing to add.
func Detail(k domain.Kind) string {
	switch k.Phase {
	case domain.PhaseDownloading:
		if f, ok := k.Fraction(); ok {
			return fmt.Sprintf("%3d%% %s / %s", int(f*100), humanize.IBytes(k.Progress), humanize.IBytes(k.Total))
		}
		return humanize.IBytes(k.Progress)
	case domain.PhaseInstalled:
		return humanize.IBytes(k.Size)
	default:
		return ""
	}
}

// Source flags download sources that need attention.
func Source(v domain.Version) string {
	switch v.Download.Kind {
	case domain.SourceInvalid:
		return "invalid source"
	case domain.SourceUntrusted:
		return "unchecked source"
	case domain.SourceLocal:
		return "local"
	default:
		return ""
	}
}

// Line renders "<label> <detail> (<source>)" for an installation.
func Line(inst domain.Installation) string {
	line := Label(inst.Kind)
	if d := Detail(inst.Kind); d != "" {
		line += " " + d
	}
	if s := Source(inst.Version); s != "" && inst.Kind.Phase == domain.PhaseDiscovered {
		line += " (" + s + ")"
	}
	return line
}
