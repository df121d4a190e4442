package ports

import "go.trai.ch/hangar/internal/core/domain"

// Notifier is the sink for user-visible events.
//
//go:generate mockgen -source=notifier.go -destination=mocks/mock_notifier.go -package=mocks
type Notifier interface {
	Notify(ev domain.Event)
}
