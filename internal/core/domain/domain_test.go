package domain_test

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/hangar/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestParseDownloadSource(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind domain.SourceKind
		wantURL  string
	}{
		{
			name:     "https url",
			raw:      "https://cdn.example.com/alpha/7.zip",
			wantKind: domain.SourceValid,
			wantURL:  "https://cdn.example.com/alpha/7.zip",
		},
		{
			name:     "surrounding whitespace",
			raw:      "  http://cdn.example.com/a.zip\n",
			wantKind: domain.SourceValid,
			wantURL:  "http://cdn.example.com/a.zip",
		},
		{
			name:     "deny-listed literal",
			raw:      "http://mirror.invalid/builds/nightly.zip",
			wantKind: domain.SourceUntrusted,
			wantURL:  "http://mirror.invalid/builds/nightly.zip",
		},
		{
			name:     "deny-list is an exact match",
			raw:      "http://mirror.invalid/builds/nightly.zip?x=1",
			wantKind: domain.SourceValid,
			wantURL:  "http://mirror.invalid/builds/nightly.zip?x=1",
		},
		{
			name:     "relative path",
			raw:      "builds/7.zip",
			wantKind: domain.SourceInvalid,
			wantURL:  "builds/7.zip",
		},
		{
			name:     "empty",
			raw:      "",
			wantKind: domain.SourceInvalid,
			wantURL:  "",
		},
		{
			name:     "unsupported scheme",
			raw:      "ftp://cdn.example.com/7.zip",
			wantKind: domain.SourceInvalid,
			wantURL:  "ftp://cdn.example.com/7.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ParseDownloadSource(tt.raw)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantURL, got.URL)
		})
	}
}

func TestVersion_EqualIgnoresDownload(t *testing.T) {
	a := domain.NewVersion("alpha", "7", "https://a.example.com/7.zip")
	b := domain.NewVersion("alpha", "7", "not a url")
	c := domain.LocalVersion("alpha", "7")

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.Equal(t, a.Key(), c.Key())
	assert.False(t, a.Equal(domain.NewVersion("alpha", "8", "")))
	assert.Equal(t, "alpha-7", a.String())
}

func TestVersion_Compare(t *testing.T) {
	local := domain.LocalVersion("zeta", "9")
	valid := domain.NewVersion("alpha", "1", "https://a.example.com/1.zip")
	validLater := domain.NewVersion("alpha", "2", "https://a.example.com/2.zip")
	untrusted := domain.NewVersion("alpha", "1", "http://mirror.invalid/builds/nightly.zip")
	invalid := domain.NewVersion("alpha", "0", "::")

	versions := []domain.Version{invalid, validLater, untrusted, local, valid}
	slices.SortFunc(versions, domain.Version.Compare)

	assert.Equal(t, []domain.Version{local, valid, validLater, untrusted, invalid}, versions)
	assert.Zero(t, valid.Compare(valid))
	assert.Negative(t, local.Compare(valid))
	assert.Positive(t, invalid.Compare(untrusted))
}

func TestVersion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fork    string
		build   string
		wantErr bool
	}{
		{name: "ok", fork: "alpha", build: "7"},
		{name: "empty fork", fork: "", build: "7", wantErr: true},
		{name: "empty build", fork: "alpha", build: "", wantErr: true},
		{name: "dot dot", fork: "..", build: "7", wantErr: true},
		{name: "slash", fork: "alpha", build: "7/../../etc", wantErr: true},
		{name: "backslash", fork: `a\b`, build: "7", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.LocalVersion(tt.fork, tt.build).Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidVersion)
		})
	}
}

func TestVersion_Path(t *testing.T) {
	v := domain.LocalVersion("beta", "3")
	assert.Equal(t, filepath.Join("beta", "3"), v.Path())
	assert.Equal(t, filepath.Join("root", "beta", "3", "data.zip"), domain.ArchivePath("root", v))
}

func TestKind_Constructors(t *testing.T) {
	assert.Equal(t, domain.Discovered(), domain.Kind{})
	assert.True(t, domain.Downloading(0).Active())
	assert.True(t, domain.Unpacking().Active())
	assert.False(t, domain.Installed(10).Active())
	assert.False(t, domain.Discovered().Active())

	k := domain.DownloadingOf(0, 100).Advance(40).Advance(10)
	assert.Equal(t, domain.DownloadingOf(50, 100), k)

	f, ok := k.Fraction()
	require.True(t, ok)
	assert.InDelta(t, 0.5, f, 1e-9)

	_, ok = domain.Downloading(50).Fraction()
	assert.False(t, ok)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "Discovered", domain.PhaseDiscovered.String())
	assert.Equal(t, "Downloading", domain.PhaseDownloading.String())
	assert.Equal(t, "Unpacking", domain.PhaseUnpacking.String())
	assert.Equal(t, "Installed", domain.PhaseInstalled.String())
	assert.Equal(t, "Unknown", domain.Phase(42).String())
}

func TestErrorEvent(t *testing.T) {
	err := zerr.Wrap(domain.ErrNothingToAbort, "alpha-7")
	ev := domain.ErrorEvent(err)
	assert.Equal(t, domain.EventError, ev.Level)
	assert.Equal(t, err.Error(), ev.Message)
	assert.True(t, errors.Is(err, domain.ErrNothingToAbort))
}

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.NotEmpty(t, cfg.InstallRoot)
	assert.Equal(t, domain.DefaultExecutable(), cfg.Executable)
	assert.Equal(t, domain.DefaultPollInterval, cfg.PollInterval)
	assert.Equal(t, domain.DefaultServerTTL, cfg.ServerTTL)
	assert.Equal(t, domain.LogFileName, filepath.Base(cfg.LogFile))
}
