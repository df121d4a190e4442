// Package app implements the application layer for hangar.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel"
	"go.trai.ch/hangar/internal/adapters/serverlist"
	"go.trai.ch/hangar/internal/adapters/telemetry"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/hangar/internal/engine/lifecycle"
	"go.trai.ch/hangar/internal/engine/supervisor"
	"go.trai.ch/zerr"
)

// Deps are the collaborators an App is built from.
type Deps struct {
	ConfigLoader ports.ConfigLoader
	Fetcher      ports.Fetcher
	Extractor    ports.Extractor
	Launcher     ports.Launcher
	Watcher      ports.Watcher
	Logger       ports.Logger
	Tracer       ports.Tracer
	Supervisor   *supervisor.Supervisor
	Events       *supervisor.EventQueue
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	fetcher      ports.Fetcher
	extractor    ports.Extractor
	launcher     ports.Launcher
	watcher      ports.Watcher
	logger       ports.Logger
	tracer       ports.Tracer
	supervisor   *supervisor.Supervisor
	events       *supervisor.EventQueue

	stdout       io.Writer
	stderr       io.Writer
	teaOptions   []tea.ProgramOption
	tickInterval time.Duration
}

// New creates a new App instance.
func New(deps Deps) *App {
	return &App{
		configLoader: deps.ConfigLoader,
		fetcher:      deps.Fetcher,
		extractor:    deps.Extractor,
		launcher:     deps.Launcher,
		watcher:      deps.Watcher,
		logger:       deps.Logger,
		tracer:       deps.Tracer,
		supervisor:   deps.Supervisor,
		events:       deps.Events,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput redirects listings and progress away from the process streams.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithTeaOptions adds bubbletea program options to the App.
// This is primarily used for testing to disable input/output.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// WithTickInterval overrides how often the interface re-reads state.
func (a *App) WithTickInterval(d time.Duration) *App {
	a.tickInterval = d
	return a
}

// Options are shared by every use case.
type Options struct {
	// ConfigPath is the configuration file. Empty means the default location.
	ConfigPath string
	// OutputMode is "auto", "tui" or "linear".
	OutputMode string
}

// session is the state built from one configuration load.
type session struct {
	cfg       *domain.Config
	manager   *lifecycle.Manager
	directory *serverlist.Directory
	poller    *serverlist.Poller
}

// open loads the configuration, seeds the server directory and scans the install root.
func (a *App) open(ctx context.Context, configPath string, notifier ports.Notifier) (*session, error) {
	if configPath == "" {
		configPath = domain.DefaultConfigPath()
	}
	cfg, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	dir := serverlist.NewDirectory(cfg.ServerTTL)
	for _, seed := range cfg.Servers {
		dir.Pin(seed.Address, seed.Version())
	}

	mgr, err := lifecycle.New(lifecycle.Options{
		InstallRoot:             cfg.InstallRoot,
		AllowUncheckedDownloads: cfg.AllowUncheckedDownloads,
		Executable:              cfg.Executable,
		MaxUnpacks:              runtime.GOMAXPROCS(0),
	}, lifecycle.Deps{
		Fetcher:   a.fetcher,
		Extractor: a.extractor,
		Launcher:  a.launcher,
		Servers:   dir,
		Notifier:  notifier,
		Logger:    a.logger,
		Tracer:    a.tracer,
	})
	if err != nil {
		return nil, err
	}

	if err := mgr.Refresh(ctx); err != nil {
		return nil, err
	}

	s := &session{cfg: cfg, manager: mgr, directory: dir}
	if cfg.ServerListURL != "" {
		s.poller = serverlist.NewPoller(cfg.ServerListURL, cfg.PollInterval, dir, a.logger)
	}
	return s, nil
}

// discover records every version the directory currently advertises.
// Entries already installing or installed are left as they are.
func (s *session) discover() {
	for _, v := range s.directory.Versions() {
		s.manager.Discover(v)
	}
}

// sync polls the server list once, when one is configured, and refreshes the registry.
// A failed poll only costs the remote versions.
func (a *App) sync(ctx context.Context, s *session) error {
	if s.poller != nil {
		if n, err := s.poller.Poll(ctx); err != nil {
			a.logger.Warn(fmt.Sprintf("server list: %v", err))
		} else {
			a.logger.Info(fmt.Sprintf("server list: %d servers", n))
		}
	}
	return s.manager.Refresh(ctx)
}

// outputSetter is implemented by loggers that can be redirected.
type outputSetter interface {
	SetOutput(w io.Writer)
}

// redirectLogs sends log output to path while the terminal is taken.
// The returned function restores the previous destination.
func (a *App) redirectLogs(path string) (func(), error) {
	setter, ok := a.logger.(outputSetter)
	if !ok || path == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create log directory"), "path", path)
	}
	//nolint:gosec // path comes from the user's configuration
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.FilePerm)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open log file"), "path", path)
	}

	setter.SetOutput(f)
	return func() {
		setter.SetOutput(a.stderr)
		_ = f.Close()
	}, nil
}

// setupOTel routes finished spans through the bridge.
func setupOTel(bridge *telemetry.LogBridge) {
	otel.SetTracerProvider(telemetry.NewProvider(bridge))
}
