package registry

import (
	"context"

	"github.com/webitel/hangman-client/config"
	"go.uber.org/fx"
)

var Module = fx.Module("registry",
	fx.Provide(
		// [CLEAN_INJECTION] Configure Hub using Functional Options
		func(cfg *config.Config) *Hub {
			return NewHub(
				WithEvictionInterval(cfg.Web.EvictEvery),
				WithIdleTimeout(cfg.Web.IdleTimeout),
				WithMailboxSize(cfg.Web.MailboxSize),
			)
		},
		func(h *Hub) Hubber { return h },
	),
	fx.Invoke(func(lc fx.Lifecycle, h Hubber) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				h.Shutdown() // [GRACEFUL_SHUTDOWN] Stop all cell goroutines
				return nil
			},
		})
	}),
)
