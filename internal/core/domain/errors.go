package domain

import "go.trai.ch/zerr"

var (
	// ErrInvalidVersion is returned when a fork or build cannot be used as a path segment.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrUnknownVersion is returned when a version is not tracked by the registry.
	ErrUnknownVersion = zerr.New("unknown version")

	// ErrNotDiscovered is returned when installing a version that is not in the Discovered state.
	ErrNotDiscovered = zerr.New("version is not in discovered state")

	// ErrAlreadyInstalled is returned when installing a version that only exists locally.
	ErrAlreadyInstalled = zerr.New("version is already installed")

	// ErrInvalidDownload is returned when the download source failed to parse as a URL.
	ErrInvalidDownload = zerr.New("invalid download url")

	// ErrUntrustedDownload is returned when the download source is on the deny-list
	// and unchecked downloads are not allowed.
	ErrUntrustedDownload = zerr.New("untrusted download url")

	// ErrInstallInProgress is returned when a previous pipeline for the version is still draining.
	ErrInstallInProgress = zerr.New("installation still in progress")

	// ErrNothingToAbort is returned when aborting a version that is not downloading or unpacking.
	ErrNothingToAbort = zerr.New("nothing to abort")

	// ErrNotInstalled is returned when uninstalling or launching a version that is not installed.
	ErrNotInstalled = zerr.New("version is not installed")

	// ErrDownloadFailed is returned when the archive could not be fetched or written.
	ErrDownloadFailed = zerr.New("download failed")

	// ErrDownloadStalled is returned when the download body stops delivering data.
	ErrDownloadStalled = zerr.New("download stalled")

	// ErrUnexpectedStatus is returned when the download server answers with a non-2xx status.
	ErrUnexpectedStatus = zerr.New("unexpected http status")

	// ErrExtractFailed is returned when the archive could not be unpacked.
	ErrExtractFailed = zerr.New("extraction failed")

	// ErrArchiveEntryOutsideRoot is returned when an archive entry would be written outside the destination.
	ErrArchiveEntryOutsideRoot = zerr.New("archive entry escapes destination")

	// ErrUninstallFailed is returned when the install directory could not be removed.
	ErrUninstallFailed = zerr.New("uninstall failed")

	// ErrScanFailed is returned when the install root could not be read.
	ErrScanFailed = zerr.New("failed to scan install root")

	// ErrInstallRootCreateFailed is returned when the install root cannot be created.
	ErrInstallRootCreateFailed = zerr.New("failed to create install root")

	// ErrLaunchFailed is returned when the game process could not be started.
	ErrLaunchFailed = zerr.New("launch failed")

	// ErrExecutableNotFound is returned when the install directory has no game executable.
	ErrExecutableNotFound = zerr.New("executable not found")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config")

	// ErrConfigParseFailed is returned when the configuration file is not valid YAML.
	ErrConfigParseFailed = zerr.New("failed to parse config")

	// ErrConfigInvalid is returned when a configuration value is out of range.
	ErrConfigInvalid = zerr.New("invalid config")

	// ErrServerListFetchFailed is returned when the server list endpoint cannot be reached.
	ErrServerListFetchFailed = zerr.New("failed to fetch server list")

	// ErrServerListDecodeFailed is returned when the server list payload is malformed.
	ErrServerListDecodeFailed = zerr.New("failed to decode server list")

	// ErrWatcherFailed is returned when the filesystem watcher cannot be started.
	ErrWatcherFailed = zerr.New("failed to watch install root")

	// ErrInternalFault is recorded when a supervised task panics.
	ErrInternalFault = zerr.New("internal fault")
)
