package events

import (
	"runtime/debug"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/event"
)

// [INFRASTRUCTURE_BRIDGE]
// bindScreens connects the bus to the hub, handling panic recovery, locality and decoding.
func (h *ScreenHandler) bindScreens() message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("PANIC_RECOVERED",
					"err", r,
					"stack", string(debug.Stack()),
					"msg_id", msg.UUID)
			}
		}()

		// [LOCALITY_FILTER] Nobody watches this session: nothing to decode.
		if sid, err := uuid.Parse(msg.Metadata.Get("session_id")); err == nil && !h.hub.IsWatched(sid) {
			return nil
		}

		ev, err := event.DecodeScreenEvent(msg.Payload)
		if err != nil {
			h.logger.Error("DECODE_FAILED", "err", err, "msg_id", msg.UUID)
			return nil // ACK: a malformed screen will never decode.
		}

		if !h.hub.Broadcast(ev) {
			h.logger.Debug("SCREEN_NOT_DELIVERED",
				"session_id", ev.GetSessionID(),
				"event_id", ev.GetID(),
			)
		}
		return nil
	}
}
