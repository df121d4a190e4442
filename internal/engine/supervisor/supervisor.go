// Package supervisor runs background operations and turns their outcomes into events.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/zerr"
)

// Op is an operation run under supervision.
type Op func(ctx context.Context) error

// Supervisor is the single entry point for background work.
//
// A failed operation is reported once through the notifier. A panicking
// operation is recovered and only raises the fatal flag; the owner of the
// terminal checks Fatal and shuts down cleanly.
type Supervisor struct {
	notifier ports.Notifier
	logger   ports.Logger

	wg    sync.WaitGroup
	fatal atomic.Bool

	mu    sync.Mutex
	fault error
}

// New creates a Supervisor reporting to notifier and logger.
func New(notifier ports.Notifier, logger ports.Logger) *Supervisor {
	return &Supervisor{notifier: notifier, logger: logger}
}

// Spawn runs op in the background and returns its task ID.
// Failures are published as error events.
func (s *Supervisor) Spawn(ctx context.Context, name string, op Op) string {
	id := uuid.NewString()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.run(ctx, id, name, op)
		if err == nil || errors.Is(err, domain.ErrInternalFault) {
			return
		}
		s.logger.Warn(fmt.Sprintf("task %s (%s) failed", name, shortID(id)))
		s.logger.Error(err)
		s.notifier.Notify(domain.ErrorEvent(err))
	}()
	return id
}

// Run runs op on the calling goroutine and returns its result.
// A panic is recovered, raises the fatal flag and is returned as ErrInternalFault.
func (s *Supervisor) Run(ctx context.Context, name string, op Op) error {
	return s.run(ctx, uuid.NewString(), name, op)
}

// Fatal reports whether any supervised operation panicked.
func (s *Supervisor) Fatal() bool {
	return s.fatal.Load()
}

// Fault returns the first recovered panic.
func (s *Supervisor) Fault() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

// Wait blocks until every spawned operation has returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

func (s *Supervisor) run(ctx context.Context, id, name string, op Op) (err error) {
	defer zerr.Defer(func(panicErr error) {
		err = zerr.With(zerr.With(zerr.Wrap(errors.Join(domain.ErrInternalFault, panicErr), name), "task", name), "task_id", id)
		s.recordFault(err)
	})

	return op(ctx)
}

func (s *Supervisor) recordFault(err error) {
	s.mu.Lock()
	if s.fault == nil {
		s.fault = err
	}
	s.mu.Unlock()

	s.fatal.Store(true)
	s.logger.Error(err)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
