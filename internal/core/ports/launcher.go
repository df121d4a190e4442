package ports

import "context"

// LaunchRequest describes a game process to start.
type LaunchRequest struct {
	// Dir is the build directory, used as the working directory.
	Dir string
	// Executable is the binary name inside Dir.
	Executable string
	// Address is the optional host:port to connect to on startup.
	Address string
}

// Launcher starts game processes.
//
//go:generate mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks
type Launcher interface {
	// Launch starts the process and returns once it is running.
	Launch(ctx context.Context, req LaunchRequest) error
}
