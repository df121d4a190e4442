package lifecycle_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hangar/internal/adapters/telemetry"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/hangar/internal/core/ports/mocks"
	"go.trai.ch/hangar/internal/engine/lifecycle"
	"go.uber.org/mock/gomock"
)

const alphaURL = "https://cdn.example.com/alpha/7.zip"

type fixture struct {
	root      string
	fetcher   *mocks.MockFetcher
	extractor *mocks.MockExtractor
	launcher  *mocks.MockLauncher
	mgr       *lifecycle.Manager

	mu         sync.Mutex
	advertised []domain.Version
	events     []domain.Event
}

func newFixture(t *testing.T, opts ...func(*lifecycle.Options)) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &fixture{
		root:      filepath.Join(t.TempDir(), "versions"),
		fetcher:   mocks.NewMockFetcher(ctrl),
		extractor: mocks.NewMockExtractor(ctrl),
		launcher:  mocks.NewMockLauncher(ctrl),
	}

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	servers := mocks.NewMockServerDirectory(ctrl)
	servers.EXPECT().Versions().DoAndReturn(func() []domain.Version {
		f.mu.Lock()
		defer f.mu.Unlock()
		return append([]domain.Version(nil), f.advertised...)
	}).AnyTimes()

	notifier := mocks.NewMockNotifier(ctrl)
	notifier.EXPECT().Notify(gomock.Any()).Do(func(ev domain.Event) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, ev)
	}).AnyTimes()

	o := lifecycle.Options{InstallRoot: f.root, Executable: "game"}
	for _, opt := range opts {
		opt(&o)
	}

	mgr, err := lifecycle.New(o, lifecycle.Deps{
		Fetcher:   f.fetcher,
		Extractor: f.extractor,
		Launcher:  f.launcher,
		Servers:   servers,
		Notifier:  notifier,
		Logger:    logger,
		Tracer:    telemetry.NewNoOpTracer(),
	})
	require.NoError(t, err)
	f.mgr = mgr
	return f
}

func (f *fixture) advertise(vs ...domain.Version) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advertised = vs
}

func (f *fixture) kind(t *testing.T, v domain.Version) domain.Kind {
	t.Helper()
	inst, ok := f.mgr.Lookup(v.Key())
	require.True(t, ok, "version %s not tracked", v)
	return inst.Kind
}

func (f *fixture) buildDir(v domain.Version) string {
	return filepath.Join(f.root, v.Path())
}

// expectExtract writes a small build into dest: a 4 byte executable and a 10 byte asset.
func (f *fixture) expectExtract(t *testing.T, wantArchive []byte) {
	t.Helper()
	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, archive, dest string) error {
			got, err := os.ReadFile(archive)
			if err != nil {
				return err
			}
			if !bytes.Equal(got, wantArchive) {
				return errors.New("archive content mismatch")
			}
			if err := os.WriteFile(filepath.Join(dest, "game"), []byte("run\n"), 0o755); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Join(dest, "assets"), 0o755); err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(dest, "assets", "map.dat"), []byte("0123456789"), 0o644)
		})
}

func installedBuild(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "game"), []byte("run\n"), 0o755))
}

// observingReader records the registry state seen before every read.
type observingReader struct {
	r    io.Reader
	seen func()
}

func (o *observingReader) Read(p []byte) (int, error) {
	o.seen()
	return o.r.Read(p)
}

// gatedReader returns first, then blocks until gate is closed before returning rest.
type gatedReader struct {
	first   []byte
	rest    []byte
	waiting chan struct{}
	gate    chan struct{}
	calls   int
}

func newGatedReader(first, rest []byte) *gatedReader {
	return &gatedReader{
		first:   first,
		rest:    rest,
		waiting: make(chan struct{}),
		gate:    make(chan struct{}),
	}
}

func (g *gatedReader) Read(p []byte) (int, error) {
	g.calls++
	switch g.calls {
	case 1:
		return copy(p, g.first), nil
	case 2:
		close(g.waiting)
		<-g.gate
		return copy(p, g.rest), nil
	default:
		return 0, io.EOF
	}
}

func TestManager_Discover(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", "not a url")

	f.mgr.Discover(v)
	assert.Equal(t, domain.Discovered(), f.kind(t, v))

	refreshed := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(refreshed)
	inst, _ := f.mgr.Lookup(v.Key())
	assert.Equal(t, domain.SourceValid, inst.Version.Download.Kind)
	assert.Equal(t, 1, f.mgr.Count())

	f.mgr.Discover(domain.NewVersion("..", "7", alphaURL))
	assert.Equal(t, 1, f.mgr.Count())
}

func TestManager_DiscoverNeverRegresses(t *testing.T) {
	f := newFixture(t)
	v := domain.LocalVersion("beta", "3")
	installedBuild(t, f.buildDir(v))
	require.NoError(t, f.mgr.Reconcile(context.Background()))

	f.mgr.Discover(domain.NewVersion("beta", "3", alphaURL))

	inst, ok := f.mgr.Lookup(v.Key())
	require.True(t, ok)
	assert.Equal(t, domain.PhaseInstalled, inst.Kind.Phase)
	assert.Equal(t, domain.SourceLocal, inst.Version.Download.Kind)
}

func TestManager_InstallScenario(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	payload := bytes.Repeat([]byte("z"), 100*1024)
	var seen []domain.Kind
	body := &observingReader{
		r:    bytes.NewReader(payload),
		seen: func() { seen = append(seen, f.kind(t, v)) },
	}
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{
		Body:       io.NopCloser(body),
		Total:      uint64(len(payload)),
		TotalKnown: true,
	}, nil)
	f.expectExtract(t, payload)

	require.NoError(t, f.mgr.Install(context.Background(), v))

	assert.Equal(t, domain.Installed(14), f.kind(t, v))
	assert.NoFileExists(t, domain.ArchivePath(f.root, v))
	assert.FileExists(t, filepath.Join(f.buildDir(v), "game"))

	require.NotEmpty(t, seen)
	assert.Equal(t, domain.DownloadingOf(0, uint64(len(payload))), seen[0])
	for i := 1; i < len(seen); i++ {
		assert.Equal(t, domain.PhaseDownloading, seen[i].Phase)
		assert.GreaterOrEqual(t, seen[i].Progress, seen[i-1].Progress)
	}
	assert.Equal(t, domain.DownloadingOf(uint64(len(payload)), uint64(len(payload))), seen[len(seen)-1])
}

func TestManager_InstallUnknownLength(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	payload := []byte("small archive")
	var seen []domain.Kind
	body := &observingReader{
		r:    bytes.NewReader(payload),
		seen: func() { seen = append(seen, f.kind(t, v)) },
	}
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{Body: io.NopCloser(body)}, nil)
	f.expectExtract(t, payload)

	require.NoError(t, f.mgr.Install(context.Background(), v))
	assert.Equal(t, domain.Downloading(0), seen[0])
	assert.Equal(t, domain.PhaseInstalled, f.kind(t, v).Phase)
}

func TestManager_InstallRejectsWrongState(t *testing.T) {
	f := newFixture(t)
	installed := domain.LocalVersion("beta", "3")
	installedBuild(t, f.buildDir(installed))
	require.NoError(t, f.mgr.Reconcile(context.Background()))
	before := f.kind(t, installed)

	err := f.mgr.Install(context.Background(), installed)
	require.ErrorIs(t, err, domain.ErrNotDiscovered)
	assert.Equal(t, before, f.kind(t, installed))

	err = f.mgr.Install(context.Background(), domain.NewVersion("gamma", "1", alphaURL))
	require.ErrorIs(t, err, domain.ErrUnknownVersion)
}

func TestManager_InstallRejectsActiveState(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	body := newGatedReader([]byte("chunk-1"), []byte("chunk-2"))
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{Body: io.NopCloser(body)}, nil)
	f.expectExtract(t, []byte("chunk-1chunk-2"))

	done := make(chan error, 1)
	go func() { done <- f.mgr.Install(context.Background(), v) }()
	<-body.waiting

	during := f.kind(t, v)
	require.Equal(t, domain.Downloading(7), during)
	require.ErrorIs(t, f.mgr.Install(context.Background(), v), domain.ErrNotDiscovered)
	assert.Equal(t, during, f.kind(t, v))

	close(body.gate)
	require.NoError(t, <-done)
	assert.Equal(t, domain.PhaseInstalled, f.kind(t, v).Phase)
}

func TestManager_InstallSourceChecks(t *testing.T) {
	untrustedURL := "http://mirror.invalid/builds/nightly.zip"

	tests := []struct {
		name      string
		version   domain.Version
		allow     bool
		wantErr   error
		wantFetch bool
	}{
		{
			name:    "invalid url",
			version: domain.NewVersion("alpha", "7", "::not a url"),
			wantErr: domain.ErrInvalidDownload,
		},
		{
			name:    "untrusted url",
			version: domain.NewVersion("alpha", "7", untrustedURL),
			wantErr: domain.ErrUntrustedDownload,
		},
		{
			name:      "untrusted url allowed",
			version:   domain.NewVersion("alpha", "7", untrustedURL),
			allow:     true,
			wantErr:   domain.ErrDownloadFailed,
			wantFetch: true,
		},
		{
			name:    "local source",
			version: domain.LocalVersion("alpha", "7"),
			wantErr: domain.ErrAlreadyInstalled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, func(o *lifecycle.Options) { o.AllowUncheckedDownloads = tt.allow })
			f.mgr.Discover(tt.version)
			if tt.wantFetch {
				f.fetcher.EXPECT().Fetch(gomock.Any(), untrustedURL).Return(nil, errors.New("offline"))
			}

			err := f.mgr.Install(context.Background(), tt.version)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.Discovered(), f.kind(t, tt.version))
		})
	}
}

func TestManager_AbortMidDownload(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	body := newGatedReader([]byte("chunk-1"), []byte("chunk-2"))
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{Body: io.NopCloser(body)}, nil)

	done := make(chan error, 1)
	go func() { done <- f.mgr.Install(context.Background(), v) }()
	<-body.waiting

	require.NoError(t, f.mgr.AbortInstallation(v))
	assert.Equal(t, domain.Discovered(), f.kind(t, v))

	// The old pipeline has not exited yet.
	require.ErrorIs(t, f.mgr.Install(context.Background(), v), domain.ErrInstallInProgress)

	close(body.gate)
	require.NoError(t, <-done)

	assert.Equal(t, domain.Discovered(), f.kind(t, v))
	assert.NoDirExists(t, f.buildDir(v))

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.events, 1)
	assert.Equal(t, domain.EventInfo, f.events[0].Level)
	assert.Contains(t, f.events[0].Message, "alpha-7")
}

func TestManager_AbortDuringUnpack(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{
		Body: io.NopCloser(bytes.NewReader([]byte("archive"))),
	}, nil)

	unpacking := make(chan struct{})
	gate := make(chan struct{})
	f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, dest string) error {
			if err := os.WriteFile(filepath.Join(dest, "game"), []byte("run\n"), 0o755); err != nil {
				return err
			}
			close(unpacking)
			<-gate
			return nil
		})

	done := make(chan error, 1)
	go func() { done <- f.mgr.Install(context.Background(), v) }()
	<-unpacking

	require.Equal(t, domain.Unpacking(), f.kind(t, v))
	require.NoError(t, f.mgr.AbortInstallation(v))
	close(gate)

	require.NoError(t, <-done)
	assert.Equal(t, domain.Discovered(), f.kind(t, v))
	assert.NoDirExists(t, f.buildDir(v))
}

func TestManager_AbortBeforeFirstChunk(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	fetching := make(chan struct{})
	gate := make(chan struct{})
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).DoAndReturn(
		func(ctx context.Context, _ string) (*ports.Download, error) {
			close(fetching)
			<-gate
			assert.Error(t, ctx.Err(), "abort cancels the transfer")
			return &ports.Download{Body: io.NopCloser(bytes.NewReader([]byte("archive")))}, nil
		})

	done := make(chan error, 1)
	go func() { done <- f.mgr.Install(context.Background(), v) }()
	<-fetching

	require.NoError(t, f.mgr.AbortInstallation(v))
	close(gate)

	require.NoError(t, <-done)
	assert.Equal(t, domain.Discovered(), f.kind(t, v))
	assert.NoDirExists(t, f.buildDir(v))
}

// stalledBody returns first and then blocks until the request context ends,
// like a connection that stopped sending.
type stalledBody struct {
	ctx   context.Context //nolint:containedctx // stands in for the request context
	first []byte
	sent  bool
}

func (s *stalledBody) Read(p []byte) (int, error) {
	if !s.sent {
		s.sent = true
		return copy(p, s.first), nil
	}
	<-s.ctx.Done()
	return 0, s.ctx.Err()
}

func TestManager_AbortStalledDownload(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).DoAndReturn(
		func(ctx context.Context, _ string) (*ports.Download, error) {
			return &ports.Download{Body: io.NopCloser(&stalledBody{ctx: ctx, first: []byte("chunk-1")})}, nil
		})

	done := make(chan error, 1)
	go func() { done <- f.mgr.Install(context.Background(), v) }()
	require.Eventually(t, func() bool {
		inst, _ := f.mgr.Lookup(v.Key())
		return inst.Kind == domain.Downloading(7)
	}, 5*time.Second, 5*time.Millisecond)

	require.NoError(t, f.mgr.AbortInstallation(v))
	require.NoError(t, <-done)
	assert.NoDirExists(t, f.buildDir(v))

	payload := []byte("archive")
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{
		Body: io.NopCloser(bytes.NewReader(payload)),
	}, nil)
	f.expectExtract(t, payload)

	require.NoError(t, f.mgr.Install(context.Background(), v))
	assert.Equal(t, domain.Installed(14), f.kind(t, v))
}

func TestManager_AbortRequiresActiveTransfer(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	require.ErrorIs(t, f.mgr.AbortInstallation(v), domain.ErrNothingToAbort)
	require.ErrorIs(t, f.mgr.AbortInstallation(domain.LocalVersion("nope", "1")), domain.ErrNothingToAbort)
	assert.Equal(t, domain.Discovered(), f.kind(t, v))
}

func TestManager_FailuresRevertToDiscovered(t *testing.T) {
	t.Run("fetch", func(t *testing.T) {
		f := newFixture(t)
		v := domain.NewVersion("alpha", "7", alphaURL)
		f.mgr.Discover(v)
		f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(nil, errors.New("connection refused"))

		err := f.mgr.Install(context.Background(), v)
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, domain.Discovered(), f.kind(t, v))
		assert.NoDirExists(t, f.buildDir(v))
	})

	t.Run("read", func(t *testing.T) {
		f := newFixture(t)
		v := domain.NewVersion("alpha", "7", alphaURL)
		f.mgr.Discover(v)
		body := io.MultiReader(bytes.NewReader([]byte("partial")), iotestErrReader{})
		f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{Body: io.NopCloser(body)}, nil)

		err := f.mgr.Install(context.Background(), v)
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		assert.Equal(t, domain.Discovered(), f.kind(t, v))
		assert.NoDirExists(t, f.buildDir(v))
	})

	t.Run("extract", func(t *testing.T) {
		f := newFixture(t)
		v := domain.NewVersion("alpha", "7", alphaURL)
		f.mgr.Discover(v)
		f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{
			Body: io.NopCloser(bytes.NewReader([]byte("not a zip"))),
		}, nil)
		f.extractor.EXPECT().Extract(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("zip: not a valid zip file"))

		err := f.mgr.Install(context.Background(), v)
		require.ErrorIs(t, err, domain.ErrExtractFailed)
		assert.Equal(t, domain.Discovered(), f.kind(t, v))
		assert.NoDirExists(t, f.buildDir(v))
	})
}

type iotestErrReader struct{}

func (iotestErrReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestManager_InstallUninstallRoundTrip(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.advertise(v)
	require.NoError(t, f.mgr.Refresh(context.Background()))

	payload := []byte("archive")
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{
		Body: io.NopCloser(bytes.NewReader(payload)),
	}, nil)
	f.expectExtract(t, payload)
	require.NoError(t, f.mgr.Install(context.Background(), v))
	require.Equal(t, domain.PhaseInstalled, f.kind(t, v).Phase)

	require.NoError(t, f.mgr.Uninstall(context.Background(), v))

	inst, ok := f.mgr.Lookup(v.Key())
	require.True(t, ok)
	assert.True(t, inst.Version.Equal(v))
	assert.Equal(t, domain.Discovered(), inst.Kind)
	assert.NoDirExists(t, f.buildDir(v))
	assert.Equal(t, 1, f.mgr.Count())
}

func TestManager_UninstallRequiresInstalled(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	require.ErrorIs(t, f.mgr.Uninstall(context.Background(), v), domain.ErrNotInstalled)
	assert.Equal(t, domain.Discovered(), f.kind(t, v))
}

func TestManager_ReconcileFindsInstalledBuild(t *testing.T) {
	f := newFixture(t)
	v := domain.LocalVersion("beta", "3")
	installedBuild(t, f.buildDir(v))
	require.NoError(t, os.WriteFile(filepath.Join(f.buildDir(v), "readme.txt"), []byte("hello"), 0o644))

	require.NoError(t, f.mgr.Reconcile(context.Background()))

	assert.Equal(t, domain.Installed(9), f.kind(t, v))
}

func TestManager_ReconcileIncompleteBuild(t *testing.T) {
	f := newFixture(t)
	incomplete := domain.LocalVersion("beta", "4")
	require.NoError(t, os.MkdirAll(f.buildDir(incomplete), 0o755))

	advertised := domain.NewVersion("beta", "5", alphaURL)
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "beta", "5"), 0o755))
	f.mgr.Discover(advertised)

	require.NoError(t, os.WriteFile(filepath.Join(f.root, "stray.txt"), nil, 0o644))

	require.NoError(t, f.mgr.Reconcile(context.Background()))

	inst, ok := f.mgr.Lookup(incomplete.Key())
	require.True(t, ok)
	assert.Equal(t, domain.Discovered(), inst.Kind)
	assert.Equal(t, domain.SourceLocal, inst.Version.Download.Kind)

	kept, _ := f.mgr.Lookup(advertised.Key())
	assert.Equal(t, domain.SourceValid, kept.Version.Download.Kind)
	assert.Equal(t, 2, f.mgr.Count())
}

func TestManager_ReconcileSkipsActiveTransfer(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.mgr.Discover(v)

	body := newGatedReader([]byte("chunk-1"), []byte("chunk-2"))
	f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{Body: io.NopCloser(body)}, nil)
	f.expectExtract(t, []byte("chunk-1chunk-2"))

	done := make(chan error, 1)
	go func() { done <- f.mgr.Install(context.Background(), v) }()
	<-body.waiting

	// A stale executable from an earlier install sits in the build directory.
	require.NoError(t, os.WriteFile(filepath.Join(f.buildDir(v), "game"), []byte("old"), 0o755))
	require.NoError(t, f.mgr.Refresh(context.Background()))
	assert.Equal(t, domain.Downloading(7), f.kind(t, v))

	close(body.gate)
	require.NoError(t, <-done)
	assert.Equal(t, domain.PhaseInstalled, f.kind(t, v).Phase)
}

func TestManager_RefreshDropsStaleInstalled(t *testing.T) {
	f := newFixture(t)
	v := domain.LocalVersion("beta", "3")
	installedBuild(t, f.buildDir(v))
	require.NoError(t, f.mgr.Reconcile(context.Background()))
	require.Equal(t, 1, f.mgr.Count())

	require.NoError(t, os.RemoveAll(f.buildDir(v)))
	require.NoError(t, f.mgr.Refresh(context.Background()))

	_, ok := f.mgr.Lookup(v.Key())
	assert.False(t, ok)
	assert.Zero(t, f.mgr.Count())
}

func TestManager_RefreshKeepsInstalledVisible(t *testing.T) {
	f := newFixture(t)
	v := domain.NewVersion("alpha", "7", alphaURL)
	f.advertise(v)
	installedBuild(t, f.buildDir(v))
	for i := range 200 {
		name := filepath.Join(f.buildDir(v), fmt.Sprintf("asset-%03d.dat", i))
		require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
	}
	require.NoError(t, f.mgr.Refresh(context.Background()))
	require.Equal(t, domain.PhaseInstalled, f.kind(t, v).Phase)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 20 {
			assert.NoError(t, f.mgr.Refresh(context.Background()))
		}
	}()

	for {
		select {
		case <-done:
			assert.Equal(t, domain.Installed(204), f.kind(t, v))
			return
		default:
		}
		inst, ok := f.mgr.Lookup(v.Key())
		require.True(t, ok, "installed version disappeared during refresh")
		require.Equal(t, domain.PhaseInstalled, inst.Kind.Phase)
	}
}

func TestManager_ReconcileDuringUninstall(t *testing.T) {
	for range 10 {
		f := newFixture(t)
		v := domain.LocalVersion("beta", "3")
		installedBuild(t, f.buildDir(v))
		for i := range 50 {
			name := filepath.Join(f.buildDir(v), fmt.Sprintf("asset-%03d.dat", i))
			require.NoError(t, os.WriteFile(name, []byte("x"), 0o644))
		}
		require.NoError(t, f.mgr.Reconcile(context.Background()))

		stop := make(chan struct{})
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				select {
				case <-stop:
					return
				default:
				}
				assert.NoError(t, f.mgr.Reconcile(context.Background()))
			}
		}()

		require.NoError(t, f.mgr.Uninstall(context.Background(), v))
		close(stop)
		<-done

		_, ok := f.mgr.Lookup(v.Key())
		assert.False(t, ok, "uninstalled build came back from a stale scan")
		assert.NoDirExists(t, f.buildDir(v))
	}
}

func TestManager_InstallationsDisplayOrder(t *testing.T) {
	f := newFixture(t)
	installedBuild(t, filepath.Join(f.root, "zeta", "9"))
	require.NoError(t, f.mgr.Reconcile(context.Background()))
	f.mgr.Discover(domain.NewVersion("alpha", "2", alphaURL))
	f.mgr.Discover(domain.NewVersion("alpha", "1", alphaURL))
	f.mgr.Discover(domain.NewVersion("alpha", "0", "::"))

	var got []string
	for _, inst := range f.mgr.Installations() {
		got = append(got, inst.Version.String())
	}
	assert.Equal(t, []string{"zeta-9", "alpha-1", "alpha-2", "alpha-0"}, got)
}

func TestManager_Launch(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		f := newFixture(t)
		v := domain.LocalVersion("beta", "3")
		installedBuild(t, f.buildDir(v))
		require.NoError(t, f.mgr.Reconcile(context.Background()))

		f.launcher.EXPECT().Launch(gomock.Any(), ports.LaunchRequest{
			Dir:        f.buildDir(v),
			Executable: "game",
			Address:    "10.0.0.1:27015",
		}).Return(nil)

		require.NoError(t, f.mgr.Launch(context.Background(), v, "10.0.0.1:27015"))
	})

	t.Run("installs first", func(t *testing.T) {
		f := newFixture(t)
		v := domain.NewVersion("alpha", "7", alphaURL)
		f.mgr.Discover(v)

		payload := []byte("archive")
		f.fetcher.EXPECT().Fetch(gomock.Any(), alphaURL).Return(&ports.Download{
			Body: io.NopCloser(bytes.NewReader(payload)),
		}, nil)
		f.expectExtract(t, payload)
		f.launcher.EXPECT().Launch(gomock.Any(), ports.LaunchRequest{
			Dir:        f.buildDir(v),
			Executable: "game",
		}).Return(nil)

		require.NoError(t, f.mgr.Launch(context.Background(), v, ""))
		assert.Equal(t, domain.PhaseInstalled, f.kind(t, v).Phase)
	})

	t.Run("install failure propagates", func(t *testing.T) {
		f := newFixture(t)
		v := domain.NewVersion("alpha", "7", "::")
		f.mgr.Discover(v)

		require.ErrorIs(t, f.mgr.Launch(context.Background(), v, ""), domain.ErrInvalidDownload)
	})

	t.Run("launcher failure", func(t *testing.T) {
		f := newFixture(t)
		v := domain.LocalVersion("beta", "3")
		installedBuild(t, f.buildDir(v))
		require.NoError(t, f.mgr.Reconcile(context.Background()))
		f.launcher.EXPECT().Launch(gomock.Any(), gomock.Any()).Return(domain.ErrLaunchFailed)

		require.ErrorIs(t, f.mgr.Launch(context.Background(), v, ""), domain.ErrLaunchFailed)
	})
}

func TestNew_CreatesInstallRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	_, err := lifecycle.New(lifecycle.Options{InstallRoot: root}, lifecycle.Deps{Tracer: telemetry.NewNoOpTracer()})
	require.NoError(t, err)
	assert.DirExists(t, root)
}

func TestNew_InstallRootIsAFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o644))

	_, err := lifecycle.New(lifecycle.Options{InstallRoot: root}, lifecycle.Deps{})
	require.ErrorIs(t, err, domain.ErrInstallRootCreateFailed)
}
