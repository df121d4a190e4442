package app

import (
	"context"
	"fmt"
	"time"

	"go.trai.ch/hangar/internal/adapters/linear"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/engine/supervisor"
	"go.trai.ch/zerr"
)

// progressInterval is how often a running install is sampled for progress lines.
const progressInterval = 200 * time.Millisecond

// List prints every known version in display order.
func (a *App) List(ctx context.Context, opts Options) error {
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	s, err := a.open(ctx, opts.ConfigPath, renderer)
	if err != nil {
		return err
	}
	if err := a.sync(ctx, s); err != nil {
		return err
	}

	renderer.List(s.manager.Installations())
	return nil
}

// Refresh re-reads the server list and the install root, then prints the result.
func (a *App) Refresh(ctx context.Context, opts Options) error {
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	s, err := a.open(ctx, opts.ConfigPath, renderer)
	if err != nil {
		return err
	}
	if err := a.supervisor.Run(ctx, "refresh", func(ctx context.Context) error {
		return a.sync(ctx, s)
	}); err != nil {
		return err
	}

	insts := s.manager.Installations()
	renderer.Event(domain.InfoEvent(fmt.Sprintf("Refreshed %d versions", len(insts))))
	renderer.List(insts)
	return nil
}

// Install downloads and unpacks a version advertised by a known server.
func (a *App) Install(ctx context.Context, opts Options, key domain.VersionKey) error {
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	s, err := a.open(ctx, opts.ConfigPath, renderer)
	if err != nil {
		return err
	}
	if err := a.sync(ctx, s); err != nil {
		return err
	}

	inst, err := lookup(s, "install", key)
	if err != nil {
		return err
	}

	return a.track(ctx, s, renderer, key, "install", func(ctx context.Context) error {
		return s.manager.Install(ctx, inst.Version)
	})
}

// Uninstall removes an installed version from disk.
func (a *App) Uninstall(ctx context.Context, opts Options, key domain.VersionKey) error {
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	s, err := a.open(ctx, opts.ConfigPath, renderer)
	if err != nil {
		return err
	}

	inst, err := lookup(s, "uninstall", key)
	if err != nil {
		return err
	}

	if err := a.supervisor.Run(ctx, "uninstall", func(ctx context.Context) error {
		return s.manager.Uninstall(ctx, inst.Version)
	}); err != nil {
		return err
	}
	renderer.Event(domain.InfoEvent("Uninstalled " + key.String()))
	return nil
}

// Launch starts a version, installing it first when needed. An empty address
// starts the game without connecting anywhere.
func (a *App) Launch(ctx context.Context, opts Options, key domain.VersionKey, address string) error {
	renderer := linear.NewRenderer(a.stdout, a.stderr)
	s, err := a.open(ctx, opts.ConfigPath, renderer)
	if err != nil {
		return err
	}
	if err := a.sync(ctx, s); err != nil {
		return err
	}

	inst, err := lookup(s, "launch", key)
	if err != nil {
		return err
	}

	if inst.Kind.Phase != domain.PhaseInstalled {
		if err := a.track(ctx, s, renderer, key, "install", func(ctx context.Context) error {
			return s.manager.Install(ctx, inst.Version)
		}); err != nil {
			return err
		}
	}

	if err := a.supervisor.Run(ctx, "launch", func(ctx context.Context) error {
		return s.manager.Launch(ctx, inst.Version, address)
	}); err != nil {
		return err
	}

	msg := "Launched " + key.String()
	if address != "" {
		msg += " connecting to " + address
	}
	renderer.Event(domain.InfoEvent(msg))
	return nil
}

// track runs op on the calling goroutine's behalf and prints progress for key until it returns.
func (a *App) track(
	ctx context.Context,
	s *session,
	renderer *linear.Renderer,
	key domain.VersionKey,
	name string,
	op supervisor.Op,
) error {
	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- a.supervisor.Run(ctx, name, op)
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			if inst, ok := s.manager.Lookup(key); ok && err == nil {
				renderer.Progress(inst)
			}
			renderer.Done(key, time.Since(start), err)
			return err
		case <-ticker.C:
			if inst, ok := s.manager.Lookup(key); ok && inst.Kind.Active() {
				renderer.Progress(inst)
			}
		}
	}
}

// lookup returns the tracked installation for key.
func lookup(s *session, op string, key domain.VersionKey) (domain.Installation, error) {
	inst, ok := s.manager.Lookup(key)
	if !ok {
		return domain.Installation{}, zerr.With(zerr.Wrap(domain.ErrUnknownVersion, op+" "+key.String()), "version", key.String())
	}
	return inst, nil
}
