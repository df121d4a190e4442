package domain

// Phase is the state-machine tag of an installation.
type Phase uint8

const (
	// PhaseDiscovered means the version is known but not installed.
	PhaseDiscovered Phase = iota
	// PhaseDownloading means the archive is being streamed to disk.
	PhaseDownloading
	// PhaseUnpacking means the archive is complete and being extracted.
	PhaseUnpacking
	// PhaseInstalled means extraction finished and the build can be launched.
	PhaseInstalled
)

// String returns the display name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseDiscovered:
		return "Discovered"
	case PhaseDownloading:
		return "Downloading"
	case PhaseUnpacking:
		return "Unpacking"
	case PhaseInstalled:
		return "Installed"
	default:
		return "Unknown"
	}
}

// Kind is the installation state together with the payload of its phase.
// Only the fields belonging to Phase are meaningful; the constructors below
// keep the others zeroed so that Kind values compare with ==.
type Kind struct {
	Phase Phase
	// Progress is the number of archive bytes written (PhaseDownloading).
	Progress uint64
	// Total is the archive length when TotalKnown is set (PhaseDownloading).
	Total      uint64
	TotalKnown bool
	// Size is the on-disk footprint of the extracted build (PhaseInstalled).
	Size uint64
}

// Discovered returns the Kind of a known but not installed version.
func Discovered() Kind {
	return Kind{Phase: PhaseDiscovered}
}

// Downloading returns the Kind of a transfer in progress with an unknown length.
func Downloading(progress uint64) Kind {
	return Kind{Phase: PhaseDownloading, Progress: progress}
}

// DownloadingOf returns the Kind of a transfer in progress with a known length.
func DownloadingOf(progress, total uint64) Kind {
	return Kind{Phase: PhaseDownloading, Progress: progress, Total: total, TotalKnown: true}
}

// Unpacking returns the Kind of an archive being extracted.
func Unpacking() Kind {
	return Kind{Phase: PhaseUnpacking}
}

// Installed returns the Kind of an extracted build occupying size bytes.
func Installed(size uint64) Kind {
	return Kind{Phase: PhaseInstalled, Size: size}
}

// Active reports whether a background transfer currently owns the version.
func (k Kind) Active() bool {
	return k.Phase == PhaseDownloading || k.Phase == PhaseUnpacking
}

// Advance returns the downloading kind with n more bytes written.
func (k Kind) Advance(n uint64) Kind {
	k.Progress += n
	return k
}

// Fraction returns download completion in [0, 1] and whether it is known.
func (k Kind) Fraction() (float64, bool) {
	if k.Phase != PhaseDownloading || !k.TotalKnown || k.Total == 0 {
		return 0, false
	}
	f := float64(k.Progress) / float64(k.Total)
	if f > 1 {
		f = 1
	}
	return f, true
}

// Installation tracks one version and its install state.
type Installation struct {
	Version Version
	Kind    Kind
}

// Key returns the registry key of the installation.
func (i Installation) Key() VersionKey {
	return i.Version.Key()
}

// Compare orders installations for display using the version ranking.
func (i Installation) Compare(other Installation) int {
	return i.Version.Compare(other.Version)
}
