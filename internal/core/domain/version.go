package domain

import (
	"cmp"
	"net/url"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// SourceKind classifies where a version's archive comes from.
// Higher values are more relevant when ranking versions for display.
type SourceKind uint8

const (
	// SourceInvalid marks a download string that failed to parse as a URL.
	SourceInvalid SourceKind = iota
	// SourceUntrusted marks a URL on the download deny-list.
	SourceUntrusted
	// SourceValid marks a parsed, trusted download URL.
	SourceValid
	// SourceLocal marks a version that already exists on disk and has no remote source.
	SourceLocal
)

// String returns the lowercase name of the source kind.
func (k SourceKind) String() string {
	switch k {
	case SourceInvalid:
		return "invalid"
	case SourceUntrusted:
		return "untrusted"
	case SourceValid:
		return "valid"
	case SourceLocal:
		return "local"
	default:
		return "unknown"
	}
}

// untrustedDownloads is matched against the raw download string exactly.
var untrustedDownloads = map[string]struct{}{
	"http://mirror.invalid/builds/nightly.zip": {},
}

// DownloadSource describes where the archive for a version can be fetched from.
type DownloadSource struct {
	Kind SourceKind
	// URL holds the download location for SourceValid and SourceUntrusted,
	// and the unparsed raw string for SourceInvalid.
	URL string
}

// ParseDownloadSource classifies a raw download string as advertised by a server.
func ParseDownloadSource(raw string) DownloadSource {
	trimmed := strings.TrimSpace(raw)
	if _, denied := untrustedDownloads[trimmed]; denied {
		return DownloadSource{Kind: SourceUntrusted, URL: trimmed}
	}

	u, err := url.ParseRequestURI(trimmed)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return DownloadSource{Kind: SourceInvalid, URL: raw}
	}
	return DownloadSource{Kind: SourceValid, URL: u.String()}
}

// LocalSource returns the source used for versions discovered on disk.
func LocalSource() DownloadSource {
	return DownloadSource{Kind: SourceLocal}
}

// VersionKey is the identity of a version. Two versions with the same key are
// the same version regardless of their download source.
type VersionKey struct {
	Fork  string
	Build string
}

// String renders the key as "fork-build".
func (k VersionKey) String() string {
	return k.Fork + "-" + k.Build
}

// Version identifies a distinct installable build of the game.
type Version struct {
	Fork     string
	Build    string
	Download DownloadSource
}

// NewVersion builds a Version from the fields a server advertises.
func NewVersion(fork, build, download string) Version {
	return Version{Fork: fork, Build: build, Download: ParseDownloadSource(download)}
}

// LocalVersion builds a Version for a build found on disk.
func LocalVersion(fork, build string) Version {
	return Version{Fork: fork, Build: build, Download: LocalSource()}
}

// Key projects the version onto its identity.
func (v Version) Key() VersionKey {
	return VersionKey{Fork: v.Fork, Build: v.Build}
}

// Equal reports whether both versions share fork and build.
func (v Version) Equal(other Version) bool {
	return v.Key() == other.Key()
}

// Compare orders versions by descending relevance: local builds first, then
// valid, untrusted and invalid sources. Ties are broken by fork and build.
// It returns a negative number when v should be listed before other.
//
// Compare is used for display ranking only and may be non-zero for two
// versions that are Equal.
func (v Version) Compare(other Version) int {
	if c := cmp.Compare(other.Download.Kind, v.Download.Kind); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Fork, other.Fork); c != 0 {
		return c
	}
	return cmp.Compare(v.Build, other.Build)
}

// Validate checks that fork and build are usable as single path segments.
func (v Version) Validate() error {
	fields := [...]struct{ name, value string }{{"fork", v.Fork}, {"build", v.Build}}
	for _, f := range fields {
		if f.value == "" || f.value == "." || f.value == ".." || strings.ContainsAny(f.value, `/\`) {
			return zerr.With(zerr.Wrap(ErrInvalidVersion, f.name), "value", f.value)
		}
	}
	return nil
}

// Path returns the install location of the version relative to the install root.
func (v Version) Path() string {
	return filepath.Join(v.Fork, v.Build)
}

// String renders the version as "fork-build".
func (v Version) String() string {
	return v.Key().String()
}
