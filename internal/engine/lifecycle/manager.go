// Package lifecycle tracks every known game version and drives its install state.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/hangar/internal/engine/registry"
	"go.trai.ch/zerr"
	"golang.org/x/sync/semaphore"
)

// Options configures a Manager.
type Options struct {
	// InstallRoot holds one <fork>/<build> directory per version. Created if absent.
	InstallRoot string
	// AllowUncheckedDownloads permits installing versions with an untrusted source.
	AllowUncheckedDownloads bool
	// Executable is the production marker looked up inside a build directory.
	Executable string
	// MaxUnpacks bounds concurrent extractions. Defaults to GOMAXPROCS.
	MaxUnpacks int
}

// Deps are the collaborators a Manager talks to.
type Deps struct {
	Fetcher   ports.Fetcher
	Extractor ports.Extractor
	Launcher  ports.Launcher
	Servers   ports.ServerDirectory
	Notifier  ports.Notifier
	Logger    ports.Logger
	Tracer    ports.Tracer
}

// Manager owns the version registry and every transition of an installation.
//
// All registry access goes through mu. The lock is held for a single read or
// a single update and never across network or disk I/O.
//
// running holds the cancel func of every pipeline still executing. stamps
// records, per version, the sequence number of the last operation that
// changed its build directory.
type Manager struct {
	mu      sync.RWMutex
	entries *registry.Ordered[domain.VersionKey, domain.Installation]
	running map[domain.VersionKey]context.CancelFunc
	seq     uint64
	stamps  map[domain.VersionKey]uint64

	root           string
	allowUnchecked bool
	executable     string
	unpack         *semaphore.Weighted

	fetcher   ports.Fetcher
	extractor ports.Extractor
	launcher  ports.Launcher
	servers   ports.ServerDirectory
	notifier  ports.Notifier
	logger    ports.Logger
	tracer    ports.Tracer
}

// New creates a Manager and ensures the install root exists.
func New(opts Options, deps Deps) (*Manager, error) {
	if err := os.MkdirAll(opts.InstallRoot, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrInstallRootCreateFailed, err), "open install root"), "path", opts.InstallRoot)
	}

	executable := opts.Executable
	if executable == "" {
		executable = domain.DefaultExecutable()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = discardNotifier{}
	}
	unpacks := opts.MaxUnpacks
	if unpacks <= 0 {
		unpacks = runtime.GOMAXPROCS(0)
	}

	return &Manager{
		entries:        registry.NewOrdered[domain.VersionKey](domain.Installation.Compare),
		running:        make(map[domain.VersionKey]context.CancelFunc),
		stamps:         make(map[domain.VersionKey]uint64),
		root:           opts.InstallRoot,
		allowUnchecked: opts.AllowUncheckedDownloads,
		executable:     executable,
		unpack:         semaphore.NewWeighted(int64(unpacks)),
		fetcher:        deps.Fetcher,
		extractor:      deps.Extractor,
		launcher:       deps.Launcher,
		servers:        deps.Servers,
		notifier:       notifier,
		logger:         deps.Logger,
		tracer:         deps.Tracer,
	}, nil
}

// InstallRoot returns the directory holding installed builds.
func (m *Manager) InstallRoot() string {
	return m.root
}

// Installations returns a snapshot of every tracked installation in display order.
func (m *Manager) Installations() []domain.Installation {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries.Values()
}

// Count returns the number of tracked installations.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries.Len()
}

// Lookup returns the installation tracked under key.
func (m *Manager) Lookup(key domain.VersionKey) (domain.Installation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.entries.Get(key)
}

// Discover records a version advertised by a server.
// A Discovered entry is refreshed; any other state is left untouched.
func (m *Manager) Discover(v domain.Version) {
	if err := v.Validate(); err != nil {
		m.logger.Warn(fmt.Sprintf("ignoring advertised version %q: %v", v.String(), err))
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.discoverLocked(v)
}

func (m *Manager) discoverLocked(v domain.Version) {
	cur, ok := m.entries.Get(v.Key())
	if ok && cur.Kind.Phase != domain.PhaseDiscovered {
		return
	}
	m.entries.Insert(v.Key(), domain.Installation{Version: v, Kind: domain.Discovered()})
}

// Install downloads and unpacks a Discovered version. It blocks until the
// pipeline finishes, fails, or notices it was superseded.
func (m *Manager) Install(ctx context.Context, v domain.Version) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	target, err := m.beginInstall(v, cancel)
	if err != nil {
		return err
	}
	defer m.finishInstall(target.Key())

	return m.runPipeline(ctx, target)
}

// beginInstall validates the current state and claims the version for a pipeline.
func (m *Manager) beginInstall(v domain.Version, cancel context.CancelFunc) (domain.Version, error) {
	key := v.Key()

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.entries.Get(key)
	if !ok {
		return domain.Version{}, opErr("install", key, domain.ErrUnknownVersion, nil)
	}
	if cur.Kind.Phase != domain.PhaseDiscovered {
		return domain.Version{}, zerr.With(opErr("install", key, domain.ErrNotDiscovered, nil), "state", cur.Kind.Phase.String())
	}

	switch cur.Version.Download.Kind {
	case domain.SourceInvalid:
		return domain.Version{}, zerr.With(opErr("install", key, domain.ErrInvalidDownload, nil), "url", cur.Version.Download.URL)
	case domain.SourceUntrusted:
		if !m.allowUnchecked {
			return domain.Version{}, zerr.With(opErr("install", key, domain.ErrUntrustedDownload, nil), "url", cur.Version.Download.URL)
		}
	case domain.SourceLocal:
		return domain.Version{}, opErr("install", key, domain.ErrAlreadyInstalled, nil)
	case domain.SourceValid:
	}

	if _, busy := m.running[key]; busy {
		return domain.Version{}, opErr("install", key, domain.ErrInstallInProgress, nil)
	}

	m.running[key] = cancel
	m.entries.Insert(key, domain.Installation{Version: cur.Version, Kind: domain.Downloading(0)})
	return cur.Version, nil
}

func (m *Manager) finishInstall(key domain.VersionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.running, key)
}

// AbortInstallation resets a Downloading or Unpacking version to Discovered
// and cancels the running pipeline's context. The pipeline notices at its next
// progress update, or when a blocked read or extraction gives up, and cleans
// up after itself.
func (m *Manager) AbortInstallation(v domain.Version) error {
	key := v.Key()

	m.mu.Lock()
	cur, ok := m.entries.Get(key)
	if !ok || !cur.Kind.Active() {
		m.mu.Unlock()
		return opErr("abort", key, domain.ErrNothingToAbort, nil)
	}
	m.entries.Insert(key, domain.Installation{Version: cur.Version, Kind: domain.Discovered()})
	m.stampLocked(key)
	if cancel, ok := m.running[key]; ok {
		cancel()
	}
	m.mu.Unlock()

	m.notifier.Notify(domain.InfoEvent("Aborted installation of " + key.String()))
	return nil
}

// Uninstall removes an Installed version from disk and from the registry,
// then refreshes so a still-advertised version reappears as Discovered.
func (m *Manager) Uninstall(ctx context.Context, v domain.Version) error {
	key := v.Key()

	m.mu.Lock()
	cur, ok := m.entries.Get(key)
	if !ok || cur.Kind.Phase != domain.PhaseInstalled {
		m.mu.Unlock()
		return opErr("uninstall", key, domain.ErrNotInstalled, nil)
	}
	m.entries.Remove(key)
	m.stampLocked(key)
	m.mu.Unlock()

	dir := filepath.Join(m.root, cur.Version.Path())
	removeErr := os.RemoveAll(dir)
	m.stamp(key)

	if err := m.Refresh(ctx); err != nil {
		m.logger.Warn(fmt.Sprintf("refresh after uninstalling %s failed: %v", key, err))
	}

	if removeErr != nil {
		return opErr("uninstall", key, domain.ErrUninstallFailed, removeErr)
	}
	m.logger.Info("uninstalled " + key.String())
	return nil
}

// Launch starts the game for the version, installing it first when needed.
// The returned error only covers starting the process.
func (m *Manager) Launch(ctx context.Context, v domain.Version, address string) error {
	key := v.Key()

	cur, ok := m.Lookup(key)
	if !ok || cur.Kind.Phase != domain.PhaseInstalled {
		if err := m.Install(ctx, v); err != nil {
			return err
		}
		if cur, ok = m.Lookup(key); !ok || cur.Kind.Phase != domain.PhaseInstalled {
			return opErr("launch", key, domain.ErrNotInstalled, nil)
		}
	}

	req := ports.LaunchRequest{
		Dir:        filepath.Join(m.root, cur.Version.Path()),
		Executable: m.executable,
		Address:    address,
	}
	if err := m.launcher.Launch(ctx, req); err != nil {
		return zerr.With(zerr.Wrap(err, "launch "+key.String()), "version", key.String())
	}
	return nil
}

// opErr reports a failed operation on a version. errors.Is matches both
// sentinel and cause.
func opErr(op string, key domain.VersionKey, sentinel, cause error) error {
	err := sentinel
	if cause != nil {
		err = errors.Join(sentinel, cause)
	}
	return zerr.With(zerr.Wrap(err, op+" "+key.String()), "version", key.String())
}

// discardNotifier drops events when no sink was configured.
type discardNotifier struct{}

func (discardNotifier) Notify(domain.Event) {}
