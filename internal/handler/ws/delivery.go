package ws

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/webitel/hangman-client/internal/domain/event"
	"github.com/webitel/hangman-client/internal/domain/registry"
	wsmarshaller "github.com/webitel/hangman-client/internal/handler/marshaller/ws"
	"github.com/webitel/hangman-client/internal/handler/session"
	"github.com/webitel/hangman-client/internal/service"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type WSHandler struct {
	logger   *slog.Logger
	feed     service.ScreenFeed
	sessions *session.Store
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *slog.Logger, feed service.ScreenFeed, sessions *session.Store) *WSHandler {
	return &WSHandler{
		logger:   logger,
		feed:     feed,
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. RESOLVE SESSION (the page issued the cookie before opening the socket)
	sid, ok := session.FromRequest(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}
	ctrl, ok := h.sessions.Get(sid)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	// 2. UPGRADE TO WEBSOCKET
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WS_UPGRADE_FAILED", slog.Any("err", err))
		return
	}
	defer socket.Close()

	// 3. SUBSCRIBE TO THE SESSION FEED
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn, err := h.feed.Subscribe(ctx, sid)
	if err != nil {
		h.logger.Error("WS_SUBSCRIBE_FAILED", slog.Any("err", err))
		return
	}
	defer h.feed.Unsubscribe(sid, conn.GetID())

	log := h.logger.With(
		slog.String("session_id", sid.String()),
		slog.String("conn_id", conn.GetID().String()),
	)
	log.Info("WS_OPENED")

	// [HANDSHAKE] greet the viewer and replay the current screen so it never starts blank
	conn.Send(event.NewSystemEvent(sid, event.Connected, event.PriorityLow, event.ConnectedPayload{
		ConnID:    conn.GetID().String(),
		SessionID: sid.String(),
	}), time.Second)
	conn.Send(event.NewScreenEvent(sid, ctrl.Screen()), time.Second)

	// 4. PUMPS
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readPump(socket) })
	g.Go(func() error {
		err := h.writePump(gctx, socket, conn)
		// unblock readPump, which only returns on a read error
		_ = socket.Close()
		return err
	})

	if err := g.Wait(); err != nil && !isClosure(err) {
		log.Warn("WS_CLOSED_WITH_ERROR", slog.Any("err", err))
		return
	}
	log.Info("WS_CLOSED", slog.Uint64("dropped", conn.Dropped()))
}

// readPump drains client frames so control messages are processed. The feed is
// one way: anything the browser sends is ignored.
func readPump(socket *websocket.Conn) error {
	socket.SetReadLimit(512)
	_ = socket.SetReadDeadline(time.Now().Add(pongWait))
	socket.SetPongHandler(func(string) error {
		return socket.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := socket.ReadMessage(); err != nil {
			return err
		}
	}
}

func (h *WSHandler) writePump(ctx context.Context, socket *websocket.Conn, conn registry.Connector) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	// the replay and in-flight bus events may interleave; never go backwards
	gate := event.NewVersionGate()

	for {
		select {
		case <-ctx.Done():
			_ = socket.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return nil

		case <-ticker.C:
			if err := socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}

		case ev, ok := <-conn.Recv():
			if !ok {
				return nil
			}
			if !gate.Admit(ev) {
				continue
			}

			data, err := wsmarshaller.MarshallScreenEvent(ev)
			if err != nil {
				h.logger.Error("WS_MARSHAL_FAILED", slog.Any("err", err))
				continue
			}

			_ = socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := socket.WriteMessage(websocket.TextMessage, data); err != nil {
				return err
			}
		}
	}
}

func isClosure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, net.ErrClosed) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
