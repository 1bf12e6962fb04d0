package pubsub

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/fx"
)

// TopicScreenRendered carries every screen produced by a web session controller.
const TopicScreenRendered = "hangman.screen.rendered.v1"

// NewWatermillLogger adapts the application logger for watermill.
func NewWatermillLogger(logger *slog.Logger) watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logger.With("component", "watermill"))
}

// NewBus builds the in-process pub/sub. Messages published while nobody is
// subscribed are dropped, since screens are only useful live. Publish returns
// once the subscriber acked, so screens of one publisher arrive in order.
func NewBus(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: true,
	}, logger)
}

var Module = fx.Module("pubsub",
	fx.Provide(
		NewWatermillLogger,
		NewBus,
		func(b *gochannel.GoChannel) message.Publisher { return b },
		func(b *gochannel.GoChannel) message.Subscriber { return b },
		NewEventDispatcher,
	),
	fx.Invoke(func(lc fx.Lifecycle, b *gochannel.GoChannel) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return b.Close()
			},
		})
	}),
)
