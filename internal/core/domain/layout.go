package domain

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// AppDirName is the directory name used under the user config and cache dirs.
	AppDirName = "hangar"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "hangar.yaml"

	// VersionsDirName is the name of the default install root under the cache dir.
	VersionsDirName = "versions"

	// LogFileName is the name of the log file written while the TUI owns the terminal.
	LogFileName = "hangar.log"

	// ArchiveFileName is the transient archive written inside a build directory.
	ArchiveFileName = "data.zip"

	// GameLogFileName collects the output of a launched game inside its build directory.
	GameLogFileName = "game.log"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// DefaultPollInterval is how often the server list is fetched.
	DefaultPollInterval = 30 * time.Second

	// DefaultServerTTL is how long a server stays known after its last observation.
	DefaultServerTTL = 5 * time.Minute
)

// DefaultExecutable returns the name of the game binary for the current platform.
func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "game.exe"
	}
	return "game"
}

// DefaultConfigPath returns <UserConfigDir>/hangar/hangar.yaml.
// It falls back to the working directory when the user config dir is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, AppDirName, ConfigFileName)
}

// DefaultInstallRoot returns <UserCacheDir>/hangar/versions.
func DefaultInstallRoot() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join("."+AppDirName, VersionsDirName)
	}
	return filepath.Join(dir, AppDirName, VersionsDirName)
}

// DefaultLogPath returns the log file next to the given install root.
func DefaultLogPath(installRoot string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(installRoot)), LogFileName)
}

// ArchivePath returns the location of the transient archive for a version.
func ArchivePath(installRoot string, v Version) string {
	return filepath.Join(installRoot, v.Path(), ArchiveFileName)
}
