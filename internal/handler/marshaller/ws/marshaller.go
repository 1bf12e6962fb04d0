package wsmarshaller

import (
	"encoding/json"

	"github.com/webitel/hangman-client/internal/domain/event"
	"github.com/webitel/hangman-client/internal/domain/model"
)

// WSEvent is a generic wrapper for WebSocket messages to provide consistent structure
type WSEvent struct {
	Event   string `json:"event"` // e.g., "screen", "connected"
	ID      string `json:"id"`
	SentAt  int64  `json:"sent_at"`
	Payload any    `json:"payload"`
}

// MarshallScreenEvent prepares data for WebSocket transmission. The encoding is
// cached on the event, so every viewer of a session shares one buffer.
func MarshallScreenEvent(ev event.Eventer) ([]byte, error) {
	if data, ok := ev.GetCached().([]byte); ok {
		return data, nil
	}

	res := &WSEvent{
		ID:     ev.GetID(),
		SentAt: ev.GetOccurredAt(),
		Event:  "unknown",
	}

	switch p := ev.GetPayload().(type) {
	case model.Screen:
		res.Event = "screen"
		res.Payload = p
	case event.ConnectedPayload:
		res.Event = "connected"
		res.Payload = p
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	ev.SetCached(data)
	return data, nil
}
