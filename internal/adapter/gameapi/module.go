package gameapi

import (
	"log/slog"

	"github.com/webitel/hangman-client/config"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("gameapi",
	fx.Provide(
		func(cfg *config.Config, tp trace.TracerProvider, logger *slog.Logger) (*Client, error) {
			return New(cfg, tp, logger.With("component", "gameapi"))
		},
	),
)
