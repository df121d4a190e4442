package supervisor

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/hangar/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/hangar/internal/core/ports"
)

const (
	// EventQueueNodeID is the unique identifier for the event queue Graft node.
	EventQueueNodeID graft.ID = "engine.events"
	// NodeID is the unique identifier for the supervisor Graft node.
	NodeID graft.ID = "engine.supervisor"
)

func init() {
	graft.Register(graft.Node[*EventQueue]{
		ID:        EventQueueNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*EventQueue, error) {
			return NewEventQueue(DefaultSpacing, DefaultTTL), nil
		},
	})

	graft.Register(graft.Node[*Supervisor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			EventQueueNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Supervisor, error) {
			events, err := graft.Dep[*EventQueue](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(events, log), nil
		},
	})
}
