package tui

import (
	"context"
	"log/slog"

	ui "github.com/gizak/termui/v3"
	"github.com/webitel/hangman-client/internal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tui",
	fx.Provide(func(f *service.Factory, l *slog.Logger) *App {
		return NewApp(f, l.With("component", "tui"))
	}),
	fx.Invoke(func(lc fx.Lifecycle, app *App, sd fx.Shutdowner, logger *slog.Logger) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				if err := ui.Init(); err != nil {
					return err
				}

				go func() {
					defer close(done)
					app.Run(ctx, ui.PollEvents())
					// [QUIT] the user left the game, bring the whole app down
					if err := sd.Shutdown(); err != nil {
						logger.Error("TUI_SHUTDOWN_FAILED", slog.Any("err", err))
					}
				}()

				// initial load starts a game, exactly like opening the page
				app.do(ctx, "NEW_GAME", app.Controller().StartNewGame)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				<-done
				ui.Close()
				return nil
			},
		})
	}),
)
