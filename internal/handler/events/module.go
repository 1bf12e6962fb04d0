package events

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/fx"
)

var Module = fx.Module("events-handler",
	fx.Provide(
		NewScreenHandler,
		NewWatermillRouter,
	),

	fx.Invoke(func(lc fx.Lifecycle, router *message.Router, h *ScreenHandler, sub message.Subscriber, logger *slog.Logger) {
		h.RegisterHandlers(router, sub)

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := router.Run(context.Background()); err != nil {
						logger.Error("ROUTER_STOPPED", "err", err)
					}
				}()
				<-router.Running()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return router.Close()
			},
		})
	}),
)
