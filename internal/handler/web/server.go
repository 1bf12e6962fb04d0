package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/webitel/hangman-client/internal/handler/lp"
	"github.com/webitel/hangman-client/internal/handler/ws"
)

// NewRouter assembles the page routes and the two screen feeds.
func NewRouter(h *Handler, wsh *ws.WSHandler, lph *lp.LPHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	h.Routes(r)
	r.Method(http.MethodGet, "/ws", wsh)
	r.Get("/poll", lph.Poll)

	return r
}

// requestLogger logs each request once it completes.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug("WEB_REQUEST",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
