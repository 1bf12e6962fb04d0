package event

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// [GUARD] Ensure compliance with the Eventer interface.
var _ Eventer = (*SystemEvent)(nil)

// ConnectedPayload greets a viewer right after it subscribed.
type ConnectedPayload struct {
	ConnID    string `json:"conn_id"`
	SessionID string `json:"session_id"`
}

// SystemEvent is an envelope for transport-level signals that never cross the bus.
type SystemEvent struct {
	id         string
	sessionID  uuid.UUID
	kind       EventKind
	priority   EventPriority
	occurredAt int64
	payload    any
	cached     atomic.Value
}

func (e *SystemEvent) GetID() string              { return e.id }
func (e *SystemEvent) GetKind() EventKind         { return e.kind }
func (e *SystemEvent) GetSessionID() uuid.UUID    { return e.sessionID }
func (e *SystemEvent) GetPriority() EventPriority { return e.priority }
func (e *SystemEvent) GetOccurredAt() int64       { return e.occurredAt }
func (e *SystemEvent) GetPayload() any            { return e.payload }
func (e *SystemEvent) GetCached() any             { return e.cached.Load() }
func (e *SystemEvent) SetCached(v any)            { e.cached.Store(v) }

func NewSystemEvent(sessionID uuid.UUID, kind EventKind, priority EventPriority, payload any) *SystemEvent {
	return &SystemEvent{
		id:         uuid.NewString(),
		sessionID:  sessionID,
		kind:       kind,
		priority:   priority,
		occurredAt: time.Now().UnixMilli(),
		payload:    payload,
	}
}
