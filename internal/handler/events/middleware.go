package events

import (
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

// [LOGGING_MIDDLEWARE]
// Structured logging with latency.
func LoggingMiddleware(logger *slog.Logger) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			start := time.Now()
			msgs, err := h(msg)

			logger.Debug("MESSAGE_HANDLED",
				"msg_id", msg.UUID,
				"session_id", msg.Metadata.Get("session_id"),
				"duration_ms", time.Since(start).Milliseconds(),
				"success", err == nil,
			)
			return msgs, err
		}
	}
}
