package event

import "github.com/google/uuid"

type EventKind int16

const (
	Connected      EventKind = iota + 1 // [SYSTEM]
	ScreenRendered                      // [VIEW]
)

func (k EventKind) String() string {
	switch k {
	case Connected:
		return "connected"
	case ScreenRendered:
		return "screen_rendered"
	}
	return "unknown"
}

type EventPriority int32

const (
	PriorityLow    EventPriority = 10
	PriorityNormal EventPriority = 20
	PriorityHigh   EventPriority = 30
)

// Eventer defines the contract for all data packets flowing through the Hub.
type Eventer interface {
	GetID() string
	GetKind() EventKind
	GetSessionID() uuid.UUID
	GetPriority() EventPriority
	GetOccurredAt() int64
	GetPayload() any
	// GetCached and SetCached hold the wire encoding so that it is produced
	// once per event, however many viewers receive it.
	GetCached() any
	SetCached(any)
}
