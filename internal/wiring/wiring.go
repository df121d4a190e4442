// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/hangar/internal/adapters/archive"
	_ "go.trai.ch/hangar/internal/adapters/config"
	_ "go.trai.ch/hangar/internal/adapters/download"
	_ "go.trai.ch/hangar/internal/adapters/launcher"
	_ "go.trai.ch/hangar/internal/adapters/logger"
	_ "go.trai.ch/hangar/internal/adapters/telemetry"
	_ "go.trai.ch/hangar/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/hangar/internal/app"
	_ "go.trai.ch/hangar/internal/engine/supervisor"
)
