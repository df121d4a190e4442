package domain

import (
	"strings"
	"time"
)

// EventLevel is the severity of a user-visible event.
type EventLevel uint8

const (
	// EventInfo is a neutral status message.
	EventInfo EventLevel = iota
	// EventError reports a failed operation.
	EventError
)

// Event is a single user-visible notification.
type Event struct {
	Message string
	Level   EventLevel
	Time    time.Time
}

// InfoEvent builds an informational event.
func InfoEvent(msg string) Event {
	return Event{Message: msg, Level: EventInfo}
}

// ErrorEvent builds an event describing a failed operation on a single line.
func ErrorEvent(err error) Event {
	return Event{Message: strings.ReplaceAll(err.Error(), "\n", ": "), Level: EventError}
}
