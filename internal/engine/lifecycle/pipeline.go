package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
)

// chunkSize is the read size of the download loop and the granularity of progress updates.
const chunkSize = 32 * 1024

// errSuperseded reports that another operation changed the version's state mid-pipeline.
var errSuperseded = errors.New("installation superseded")

// runPipeline downloads, verifies and unpacks v into its build directory.
// A superseded pipeline removes what it wrote and returns nil. A stage that
// fails after another operation took the entry over counts as superseded.
func (m *Manager) runPipeline(ctx context.Context, v domain.Version) error {
	key := v.Key()
	dir := filepath.Join(m.root, v.Path())

	ctx, span := m.tracer.Start(ctx, "install", ports.WithAttribute("version", key.String()))
	defer span.End()

	err := m.transfer(ctx, span, v, dir)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errSuperseded) || !m.active(key):
		m.logger.Info(fmt.Sprintf("installation of %s was superseded, discarding", key))
		span.SetAttribute("superseded", true)
		m.cleanup(key, dir)
		return nil
	default:
		span.RecordError(err)
		m.restoreDiscovered(key)
		m.cleanup(key, dir)
		return err
	}
}

// active reports whether key still has a Downloading or Unpacking entry.
func (m *Manager) active(key domain.VersionKey) bool {
	cur, ok := m.Lookup(key)
	return ok && cur.Kind.Active()
}

// transfer runs the pipeline stages. Each state change is a compare-and-swap
// against the state the pipeline itself last wrote.
func (m *Manager) transfer(ctx context.Context, span ports.Span, v domain.Version, dir string) error {
	key := v.Key()

	dl, err := m.fetcher.Fetch(ctx, v.Download.URL)
	if err != nil {
		return opErr("download", key, domain.ErrDownloadFailed, err)
	}
	defer func() {
		_ = dl.Body.Close()
	}()

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return opErr("download", key, domain.ErrDownloadFailed, err)
	}

	archive := filepath.Join(dir, domain.ArchiveFileName)
	f, err := os.OpenFile(archive, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, domain.FilePerm)
	if err != nil {
		return opErr("download", key, domain.ErrDownloadFailed, err)
	}

	progress := domain.Downloading(0)
	if dl.TotalKnown {
		progress = domain.DownloadingOf(0, dl.Total)
	}
	if !m.swap(key, domain.Downloading(0), progress) {
		_ = f.Close()
		return errSuperseded
	}

	digest := xxhash.New()
	progress, err = m.stream(ctx, key, dl.Body, io.MultiWriter(f, digest), progress)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = opErr("download", key, domain.ErrDownloadFailed, closeErr)
	}
	if err != nil {
		return err
	}

	sum := fmt.Sprintf("%016x", digest.Sum64())
	span.SetAttribute("archive.bytes", progress.Progress)
	span.SetAttribute("archive.xxhash", sum)
	m.logger.Info(fmt.Sprintf("downloaded %s (%s, xxhash %s)", key, humanize.IBytes(progress.Progress), sum))

	if !m.swap(key, progress, domain.Unpacking()) {
		return errSuperseded
	}

	if err := m.extract(ctx, key, archive, dir); err != nil {
		return err
	}

	if err := os.Remove(archive); err != nil && !errors.Is(err, fs.ErrNotExist) {
		m.logger.Warn(fmt.Sprintf("failed to remove archive %s: %v", archive, err))
	}

	size, err := dirSize(dir)
	if err != nil {
		return opErr("unpack", key, domain.ErrExtractFailed, err)
	}
	span.SetAttribute("installed.bytes", size)

	if !m.swap(key, domain.Unpacking(), domain.Installed(size)) {
		return errSuperseded
	}
	m.logger.Info(fmt.Sprintf("installed %s (%s)", key, humanize.IBytes(size)))
	return nil
}

// stream copies body to w chunk by chunk, publishing progress before each write.
func (m *Manager) stream(
	ctx context.Context,
	key domain.VersionKey,
	body io.Reader,
	w io.Writer,
	progress domain.Kind,
) (domain.Kind, error) {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return progress, opErr("download", key, domain.ErrDownloadFailed, err)
		}

		n, readErr := body.Read(buf)
		if n > 0 {
			next := progress.Advance(uint64(n))
			if !m.swap(key, progress, next) {
				return progress, errSuperseded
			}
			progress = next

			if _, err := w.Write(buf[:n]); err != nil {
				return progress, opErr("download", key, domain.ErrDownloadFailed, err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return progress, nil
		}
		if readErr != nil {
			return progress, opErr("download", key, domain.ErrDownloadFailed, readErr)
		}
	}
}

// extract unpacks the archive on the bounded extraction pool.
func (m *Manager) extract(ctx context.Context, key domain.VersionKey, archive, dir string) error {
	ctx, span := m.tracer.Start(ctx, "extract", ports.WithAttribute("version", key.String()))
	defer span.End()

	if err := m.unpack.Acquire(ctx, 1); err != nil {
		return opErr("unpack", key, domain.ErrExtractFailed, err)
	}
	defer m.unpack.Release(1)

	if err := m.extractor.Extract(ctx, archive, dir); err != nil {
		span.RecordError(err)
		return opErr("unpack", key, domain.ErrExtractFailed, err)
	}
	return nil
}

// swap replaces the version's kind with next if it still equals expected.
// It reports false when another operation changed the entry in between.
func (m *Manager) swap(key domain.VersionKey, expected, next domain.Kind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.entries.Get(key)
	if !ok || cur.Kind != expected {
		return false
	}
	m.entries.Insert(key, domain.Installation{Version: cur.Version, Kind: next})
	if next.Phase == domain.PhaseInstalled {
		m.stampLocked(key)
	}
	return true
}

// restoreDiscovered reverts a failed pipeline's entry, unless another operation already moved it.
func (m *Manager) restoreDiscovered(key domain.VersionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.entries.Get(key)
	if !ok || !cur.Kind.Active() {
		return
	}
	m.entries.Insert(key, domain.Installation{Version: cur.Version, Kind: domain.Discovered()})
}

// cleanup removes a partially written build directory. Failures are only logged.
func (m *Manager) cleanup(key domain.VersionKey, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		m.logger.Warn(fmt.Sprintf("failed to clean up %s: %v", dir, err))
	}
	m.stamp(key)
}

// dirSize sums the sizes of the regular files below dir, excluding the transient
// archive and the game's output log.
func dirSize(dir string) (uint64, error) {
	archive := filepath.Join(dir, domain.ArchiveFileName)
	gameLog := filepath.Join(dir, domain.GameLogFileName)

	var total uint64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || path == archive || path == gameLog {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		total += uint64(info.Size()) //nolint:gosec // file sizes are non-negative
		return nil
	})
	return total, err
}
