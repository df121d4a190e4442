package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hangar/internal/adapters/archive"   //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/adapters/download"  //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/adapters/launcher"  //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/hangar/internal/core/ports"
	"go.trai.ch/hangar/internal/engine/supervisor"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			download.NodeID,
			archive.NodeID,
			launcher.NodeID,
			watcher.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			supervisor.NodeID,
			supervisor.EventQueueNodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

//nolint:cyclop // one lookup per dependency
func runAppNode(ctx context.Context) (*App, error) {
	var deps Deps
	var err error

	if deps.ConfigLoader, err = graft.Dep[ports.ConfigLoader](ctx); err != nil {
		return nil, err
	}
	if deps.Fetcher, err = graft.Dep[ports.Fetcher](ctx); err != nil {
		return nil, err
	}
	if deps.Extractor, err = graft.Dep[ports.Extractor](ctx); err != nil {
		return nil, err
	}
	if deps.Launcher, err = graft.Dep[ports.Launcher](ctx); err != nil {
		return nil, err
	}
	if deps.Watcher, err = graft.Dep[ports.Watcher](ctx); err != nil {
		return nil, err
	}
	if deps.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}
	if deps.Tracer, err = graft.Dep[ports.Tracer](ctx); err != nil {
		return nil, err
	}
	if deps.Supervisor, err = graft.Dep[*supervisor.Supervisor](ctx); err != nil {
		return nil, err
	}
	if deps.Events, err = graft.Dep[*supervisor.EventQueue](ctx); err != nil {
		return nil, err
	}

	return New(deps), nil
}
