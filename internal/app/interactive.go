package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/hangar/internal/adapters/detector"
	"go.trai.ch/hangar/internal/adapters/telemetry"
	"go.trai.ch/hangar/internal/adapters/tui"
	"go.trai.ch/hangar/internal/adapters/watcher"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/engine/supervisor"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// RunUI runs the interactive interface until the user quits or ctx ends.
// Without a terminal it prints the version list instead.
//
//nolint:cyclop // orchestration function
func (a *App) RunUI(ctx context.Context, opts Options) error {
	mode := detector.ResolveMode(detector.DetectEnvironment(), opts.OutputMode)
	if mode != detector.ModeTUI {
		return a.List(ctx, opts)
	}

	s, err := a.open(ctx, opts.ConfigPath, a.events)
	if err != nil {
		return err
	}

	restore, err := a.redirectLogs(s.cfg.LogFile)
	if err != nil {
		return err
	}
	defer restore()

	setupOTel(telemetry.NewLogBridge(a.logger))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	model := tui.NewModel(a.stderr, &controller{ctx: gctx, session: s, supervisor: a.supervisor, events: a.events})
	if a.tickInterval > 0 {
		model.TickInterval = a.tickInterval
	}
	optsTea := append([]tea.ProgramOption{tea.WithContext(gctx)}, a.teaOptions...)
	renderer := tui.NewRenderer(model, optsTea...)

	// Renderer Routine
	g.Go(func() error {
		defer cancel()
		renderer.Start()
		if err := renderer.Wait(); err != nil && gctx.Err() == nil {
			return zerr.Wrap(err, "terminal interface failed")
		}
		return nil
	})

	// Server list Routine
	if s.poller != nil {
		g.Go(func() error {
			return s.poller.Run(gctx, func(context.Context) {
				s.discover()
			})
		})
	}

	// Install root Routine
	g.Go(func() error {
		a.watch(gctx, s)
		return nil
	})

	err = g.Wait()
	a.supervisor.Wait()
	a.events.Stop()

	if a.supervisor.Fatal() || renderer.Fatal() {
		if fault := a.supervisor.Fault(); fault != nil {
			return fault
		}
		return domain.ErrInternalFault
	}
	return err
}

// watch refreshes the registry after changes below the install root settle.
// A watcher that cannot start only costs automatic refreshes.
func (a *App) watch(ctx context.Context, s *session) {
	if a.watcher == nil {
		return
	}

	root := s.manager.InstallRoot()
	if err := a.watcher.Start(ctx, root); err != nil {
		a.logger.Warn(fmt.Sprintf("not watching %s: %v", root, err))
		return
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(_ []string) {
		if ctx.Err() == nil {
			a.supervisor.Spawn(ctx, "refresh", s.manager.Refresh)
		}
	})
	defer debouncer.Stop()

	for event := range a.watcher.Events() {
		debouncer.Add(event.Path)
	}
}

// controller drives a session from the interface. Every action runs supervised.
type controller struct {
	ctx        context.Context //nolint:containedctx // actions outlive the key press
	session    *session
	supervisor *supervisor.Supervisor
	events     *supervisor.EventQueue
}

var _ tui.Controller = (*controller)(nil)

func (c *controller) Installations() []domain.Installation {
	return c.session.manager.Installations()
}

func (c *controller) CurrentEvent() (domain.Event, bool) {
	return c.events.Current()
}

func (c *controller) Fatal() bool {
	return c.supervisor.Fatal()
}

func (c *controller) Install(v domain.Version) {
	c.supervisor.Spawn(c.ctx, "install "+v.Key().String(), func(ctx context.Context) error {
		return c.session.manager.Install(ctx, v)
	})
}

func (c *controller) Uninstall(v domain.Version) {
	c.supervisor.Spawn(c.ctx, "uninstall "+v.Key().String(), func(ctx context.Context) error {
		return c.session.manager.Uninstall(ctx, v)
	})
}

func (c *controller) Abort(v domain.Version) {
	c.supervisor.Spawn(c.ctx, "abort "+v.Key().String(), func(_ context.Context) error {
		return c.session.manager.AbortInstallation(v)
	})
}

// Launch connects to the first known server advertising the version, if any.
func (c *controller) Launch(v domain.Version) {
	var address string
	if addrs := c.session.directory.Addresses(v.Key()); len(addrs) > 0 {
		address = addrs[0]
	}
	c.supervisor.Spawn(c.ctx, "launch "+v.Key().String(), func(ctx context.Context) error {
		return c.session.manager.Launch(ctx, v, address)
	})
}

func (c *controller) Refresh() {
	c.supervisor.Spawn(c.ctx, "refresh", c.session.manager.Refresh)
}
