package event

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/model"
)

// [GUARD] Ensure compliance with the Eventer interface.
var _ Eventer = (*ScreenEvent)(nil)

// ScreenEvent carries one rendered screen of a browser session to its viewers.
type ScreenEvent struct {
	id         string
	sessionID  uuid.UUID
	occurredAt int64
	screen     model.Screen
	cached     atomic.Value
}

func NewScreenEvent(sessionID uuid.UUID, screen model.Screen) *ScreenEvent {
	return &ScreenEvent{
		id:         uuid.NewString(),
		sessionID:  sessionID,
		occurredAt: time.Now().UnixMilli(),
		screen:     screen,
	}
}

func (e *ScreenEvent) GetID() string              { return e.id }
func (e *ScreenEvent) GetKind() EventKind         { return ScreenRendered }
func (e *ScreenEvent) GetSessionID() uuid.UUID    { return e.sessionID }
func (e *ScreenEvent) GetPriority() EventPriority { return PriorityHigh }
func (e *ScreenEvent) GetOccurredAt() int64       { return e.occurredAt }
func (e *ScreenEvent) GetPayload() any            { return e.screen }
func (e *ScreenEvent) GetCached() any             { return e.cached.Load() }
func (e *ScreenEvent) SetCached(v any)            { e.cached.Store(v) }

func (e *ScreenEvent) Screen() model.Screen { return e.screen }

// screenEnvelope is the bus representation of a ScreenEvent.
type screenEnvelope struct {
	ID         string       `json:"id"`
	SessionID  uuid.UUID    `json:"session_id"`
	OccurredAt int64        `json:"occurred_at"`
	Screen     model.Screen `json:"screen"`
}

// MarshalJSON encodes the event for the message bus.
func (e *ScreenEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(screenEnvelope{
		ID:         e.id,
		SessionID:  e.sessionID,
		OccurredAt: e.occurredAt,
		Screen:     e.screen,
	})
}

// DecodeScreenEvent restores an event published with MarshalJSON.
func DecodeScreenEvent(data []byte) (*ScreenEvent, error) {
	var env screenEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("screen event: decode: %w", err)
	}
	if env.SessionID == uuid.Nil {
		return nil, fmt.Errorf("screen event: missing session id")
	}
	return &ScreenEvent{
		id:         env.ID,
		sessionID:  env.SessionID,
		occurredAt: env.OccurredAt,
		screen:     env.Screen,
	}, nil
}
