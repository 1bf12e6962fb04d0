package lpmarshaller

import (
	"encoding/json"

	"github.com/webitel/hangman-client/internal/domain/event"
	"github.com/webitel/hangman-client/internal/domain/model"
)

// LPEvent represents a single event structured for long-polling consumers.
type LPEvent struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Payload any    `json:"payload"`
}

// Response defines the top-level JSON array to support event batching.
type Response struct {
	Events []LPEvent `json:"events"`
}

// MarshallEvents converts a slice of domain events into a single JSON batch.
func MarshallEvents(events []event.Eventer) ([]byte, error) {
	res := Response{
		Events: make([]LPEvent, 0, len(events)),
	}

	for _, ev := range events {
		lpEv := LPEvent{
			ID:      ev.GetID(),
			Payload: ev.GetPayload(),
		}

		switch ev.GetPayload().(type) {
		case model.Screen:
			lpEv.Type = "screen"
		case event.ConnectedPayload:
			lpEv.Type = "system_connected"
		default:
			lpEv.Type = "unknown"
		}
		res.Events = append(res.Events, lpEv)
	}

	return json.Marshal(res)
}
