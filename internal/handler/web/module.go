package web

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/webitel/hangman-client/config"
	"github.com/webitel/hangman-client/internal/adapter/pubsub"
	"github.com/webitel/hangman-client/internal/handler/lp"
	"github.com/webitel/hangman-client/internal/handler/session"
	"github.com/webitel/hangman-client/internal/handler/ws"
	"github.com/webitel/hangman-client/internal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("web",
	fx.Provide(
		func(cfg *config.Config, f *service.Factory, d pubsub.EventDispatcher, l *slog.Logger) (*session.Store, error) {
			return session.NewStore(cfg.Web.MaxSessions, f, d, l.With("component", "sessions"))
		},
		func(cfg *config.Config, s *session.Store, l *slog.Logger) *Handler {
			return NewHandler(s, l.With("component", "web"), cfg.Web.SecureCookie)
		},
		func(feed service.ScreenFeed, s *session.Store, l *slog.Logger) *ws.WSHandler {
			return ws.NewWSHandler(l.With("component", "ws"), feed, s)
		},
		func(cfg *config.Config, feed service.ScreenFeed, s *session.Store) *lp.LPHandler {
			return lp.NewLPHandler(feed, s, cfg.Web.PollTimeout)
		},
		func(cfg *config.Config, h *Handler, wsh *ws.WSHandler, lph *lp.LPHandler, l *slog.Logger) *http.Server {
			return &http.Server{
				Addr:              cfg.Web.Addr,
				Handler:           NewRouter(h, wsh, lph, l),
				ReadHeaderTimeout: 5 * time.Second,
			}
		},
	),
	fx.Invoke(func(lc fx.Lifecycle, srv *http.Server, logger *slog.Logger) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				// [FAIL_FAST] bind synchronously so a busy port aborts startup
				ln, err := net.Listen("tcp", srv.Addr)
				if err != nil {
					return err
				}
				logger.Info("WEB_LISTENING", slog.String("addr", "http://"+ln.Addr().String()))

				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("WEB_SERVER_FAILED", slog.Any("err", err))
					}
				}()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return srv.Shutdown(ctx)
			},
		})
	}),
)
