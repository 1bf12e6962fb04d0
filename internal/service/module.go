package service

import (
	"log/slog"

	"github.com/webitel/hangman-client/internal/adapter/gameapi"
	"go.uber.org/fx"
)

var Module = fx.Module(
	"service",

	fx.Provide(
		func(c *gameapi.Client) GameService { return c },
		func(api GameService, logger *slog.Logger) *Factory {
			return NewFactory(api, logger)
		},
	),

	// [DECORATION_LAYER] Intercept GameService to add cross-cutting concerns
	fx.Decorate(func(orig GameService, logger *slog.Logger) GameService {
		return NewGameServiceMiddleware(orig, logger)
	}),
)

// FeedModule is only needed by front ends that push screens to remote viewers.
var FeedModule = fx.Module(
	"service-feed",

	fx.Provide(
		fx.Annotate(
			NewScreenFeedService,
			fx.As(new(ScreenFeed)),
		),
	),
)
