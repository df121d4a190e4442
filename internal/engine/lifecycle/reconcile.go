package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/zerr"
)

// Reconcile scans the install root and merges what it finds into the registry.
// Entries with an active transfer are never overwritten by disk state, and
// neither are entries another operation changed while the scan ran.
func (m *Manager) Reconcile(ctx context.Context) error {
	_, span := m.tracer.Start(ctx, "reconcile")
	defer span.End()

	start := m.sequence()
	found, err := m.scan()
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttribute("candidates", len(found))

	m.mu.Lock()
	defer m.mu.Unlock()
	m.mergeLocked(found, start)
	return nil
}

// Refresh rebuilds the registry from the advertised versions and the install
// root. Entries with an active transfer survive. The install root is scanned
// first so the registry moves from the old view to the new one in a single
// update.
func (m *Manager) Refresh(ctx context.Context) error {
	_, span := m.tracer.Start(ctx, "refresh")
	defer span.End()

	var advertised []domain.Version
	if m.servers != nil {
		advertised = m.servers.Versions()
	}

	start := m.sequence()
	found, err := m.scan()
	if err != nil {
		span.RecordError(err)
		return err
	}
	span.SetAttribute("candidates", len(found))

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Retain(func(key domain.VersionKey, inst domain.Installation) bool {
		return inst.Kind.Active() || m.stamps[key] > start
	})
	for _, v := range advertised {
		if v.Validate() != nil {
			continue
		}
		m.discoverLocked(v)
	}
	m.mergeLocked(found, start)
	return nil
}

// mergeLocked applies scan candidates taken after sequence start. A candidate
// for a version changed since then describes a disk state that may be gone.
func (m *Manager) mergeLocked(found []domain.Installation, start uint64) {
	for _, candidate := range found {
		key := candidate.Key()
		if m.stamps[key] > start {
			continue
		}
		cur, ok := m.entries.Get(key)
		switch {
		case ok && cur.Kind.Active():
			m.logger.Warn(fmt.Sprintf("skipping %s on disk: %s in progress", key, cur.Kind.Phase))
		case candidate.Kind.Phase == domain.PhaseInstalled:
			m.entries.Insert(key, candidate)
		case !ok:
			m.entries.Insert(key, candidate)
		}
	}
}

// sequence returns the stamp of the latest disk-changing operation.
func (m *Manager) sequence() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.seq
}

// stampLocked records that key's build directory changed on disk.
func (m *Manager) stampLocked(key domain.VersionKey) {
	m.seq++
	m.stamps[key] = m.seq
}

// stamp is stampLocked for callers not holding mu.
func (m *Manager) stamp(key domain.VersionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stampLocked(key)
}

// scan reads <root>/<fork>/<build> and builds one candidate per build directory.
// A build holding the executable is Installed; anything else is an incomplete
// local build reported as Discovered.
func (m *Manager) scan() ([]domain.Installation, error) {
	forks, err := os.ReadDir(m.root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrScanFailed, err), "scan"), "path", m.root)
	}

	var found []domain.Installation
	for _, fork := range forks {
		if !fork.IsDir() {
			continue
		}
		forkDir := filepath.Join(m.root, fork.Name())
		builds, err := os.ReadDir(forkDir)
		if err != nil {
			m.logger.Warn(fmt.Sprintf("cannot read %s: %v", forkDir, err))
			continue
		}

		for _, build := range builds {
			if !build.IsDir() {
				continue
			}
			v := domain.LocalVersion(fork.Name(), build.Name())
			if v.Validate() != nil {
				continue
			}
			found = append(found, m.inspect(v))
		}
	}
	return found, nil
}

func (m *Manager) inspect(v domain.Version) domain.Installation {
	dir := filepath.Join(m.root, v.Path())

	info, err := os.Stat(filepath.Join(dir, m.executable))
	if err != nil || !info.Mode().IsRegular() {
		return domain.Installation{Version: v, Kind: domain.Discovered()}
	}

	size, err := dirSize(dir)
	if err != nil {
		m.logger.Warn(fmt.Sprintf("cannot measure %s: %v", dir, err))
	}
	return domain.Installation{Version: v, Kind: domain.Installed(size)}
}
