package events

import (
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/webitel/hangman-client/internal/adapter/pubsub"
	"github.com/webitel/hangman-client/internal/domain/registry"
)

const handlerScreens = "ON_SCREEN_RENDERED"

// ScreenHandler moves rendered screens from the bus to the viewers in the hub.
type ScreenHandler struct {
	hub    registry.Hubber
	logger *slog.Logger
}

func NewScreenHandler(hub registry.Hubber, logger *slog.Logger) *ScreenHandler {
	return &ScreenHandler{hub: hub, logger: logger}
}

func NewWatermillRouter(logger watermill.LoggerAdapter) (*message.Router, error) {
	return message.NewRouter(message.RouterConfig{}, logger)
}

// [REGISTRATION_PIPELINE]
func (h *ScreenHandler) RegisterHandlers(router *message.Router, sub message.Subscriber) {
	router.AddConsumerHandler(handlerScreens, pubsub.TopicScreenRendered, sub, h.bindScreens()).AddMiddleware(
		LoggingMiddleware(h.logger),
		middleware.Recoverer,
	)

	h.logger.Info("SCREEN_PIPELINE_READY", "topic", pubsub.TopicScreenRendered)
}
