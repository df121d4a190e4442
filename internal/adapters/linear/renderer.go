// Package linear renders launcher state as plain lines for pipes, scripts and CI.
package linear

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/ui/output"
	"go.trai.ch/hangar/internal/ui/status"
	"go.trai.ch/hangar/internal/ui/style"
)

const (
	keyColumnWidth = 24
	// progressStep is the download percentage between two progress lines.
	progressStep = 10
	// unknownStep is the byte count between two progress lines when the total is unknown.
	unknownStep = 4 << 20
)

// Renderer writes listings to stdout and progress to stderr.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu   sync.Mutex
	last map[domain.VersionKey]progressMark
}

type progressMark struct {
	phase  domain.Phase
	bucket uint64
}

// NewRenderer creates a Renderer. Nil writers mean the process streams.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout: stdout,
		stderr: stderr,
		output: output.NewWithProfile(stderr, output.ColorProfileANSI),
		last:   make(map[domain.VersionKey]progressMark),
	}
}

// List prints one line per installation in the given order.
func (r *Renderer) List(insts []domain.Installation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(insts) == 0 {
		_, _ = fmt.Fprintln(r.stdout, "no versions known")
		return
	}
	for _, inst := range insts {
		_, _ = fmt.Fprintf(r.stdout, "%s %-*s %s\n",
			status.Icon(inst.Kind), keyColumnWidth, inst.Key(), status.Line(inst))
	}
}

// Progress prints a line when the phase changes or the transfer advanced by a step.
func (r *Renderer) Progress(inst domain.Installation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := inst.Key()
	mark := progressMark{phase: inst.Kind.Phase, bucket: bucket(inst.Kind)}
	if prev, ok := r.last[key]; ok && prev == mark {
		return
	}
	r.last[key] = mark

	prefix := r.output.String(fmt.Sprintf("[%s]", key)).Faint().String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", prefix, status.Line(inst))
}

// Done prints the outcome of an operation on key.
func (r *Renderer) Done(key domain.VersionKey, elapsed time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.last, key)
	prefix := fmt.Sprintf("[%s]", key)
	elapsed = elapsed.Round(time.Millisecond)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v\n", prefix, symbol, elapsed)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, elapsed)
}

// Event prints a user-visible notification.
func (r *Renderer) Event(e domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Level == domain.EventError {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s\n", symbol, e.Message)
		return
	}
	_, _ = fmt.Fprintf(r.stderr, "%s %s\n", style.Arrow, e.Message)
}

// Notify implements ports.Notifier by printing the event.
func (r *Renderer) Notify(e domain.Event) {
	r.Event(e)
}

func bucket(k domain.Kind) uint64 {
	if k.Phase != domain.PhaseDownloading {
		return 0
	}
	if f, ok := k.Fraction(); ok {
		return uint64(f*100) / progressStep
	}
	return k.Progress / unknownStep
}
