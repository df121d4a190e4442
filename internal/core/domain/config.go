package domain

import "time"

// ServerSeed is a statically configured server and the version it requires.
type ServerSeed struct {
	Address  string
	Fork     string
	Build    string
	Download string
}

// Version returns the version the seed advertises.
func (s ServerSeed) Version() Version {
	return NewVersion(s.Fork, s.Build, s.Download)
}

// Config is the resolved launcher configuration.
type Config struct {
	// InstallRoot is the directory holding <fork>/<build> trees.
	InstallRoot string
	// AllowUncheckedDownloads permits installing from untrusted sources.
	AllowUncheckedDownloads bool
	// Executable is the file name of the game binary inside a build directory.
	Executable string
	// ServerListURL is polled for servers when non-empty.
	ServerListURL string
	// PollInterval is the delay between server list fetches.
	PollInterval time.Duration
	// ServerTTL is how long a server is remembered after it was last seen.
	ServerTTL time.Duration
	// Servers are seeded into the server directory at startup.
	Servers []ServerSeed
	// LogFile receives log output while the terminal UI is running.
	LogFile string
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	root := DefaultInstallRoot()
	return &Config{
		InstallRoot:  root,
		Executable:   DefaultExecutable(),
		PollInterval: DefaultPollInterval,
		ServerTTL:    DefaultServerTTL,
		LogFile:      DefaultLogPath(root),
	}
}
