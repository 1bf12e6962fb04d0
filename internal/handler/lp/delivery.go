package lp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/webitel/hangman-client/internal/domain/event"
	lpmarshaller "github.com/webitel/hangman-client/internal/handler/marshaller/lp"
	"github.com/webitel/hangman-client/internal/handler/session"
	"github.com/webitel/hangman-client/internal/service"
)

type LPHandler struct {
	feed     service.ScreenFeed
	sessions *session.Store
	timeout  time.Duration
}

func NewLPHandler(feed service.ScreenFeed, sessions *session.Store, timeout time.Duration) *LPHandler {
	return &LPHandler{
		feed:     feed,
		sessions: sessions,
		timeout:  timeout,
	}
}

// Poll handles the long-polling request.
// The client passes the version it shows in "after"; a newer current screen is
// answered at once, otherwise the request is held until one arrives or timeout occurs.
func (h *LPHandler) Poll(w http.ResponseWriter, r *http.Request) {
	// 1. Resolve the browser session.
	sid, ok := session.FromRequest(r)
	if !ok {
		http.Error(w, "no session", http.StatusUnauthorized)
		return
	}

	gate := event.NewVersionGate()
	if raw := r.URL.Query().Get("after"); raw != "" {
		after, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid after", http.StatusBadRequest)
			return
		}
		gate.Seen(after)
	}

	// 2. Temporary Subscription.
	// The connector lives only for the duration of this HTTP request.
	conn, err := h.feed.Subscribe(r.Context(), sid)
	if err != nil {
		http.Error(w, "failed to subscribe", http.StatusInternalServerError)
		return
	}
	defer h.feed.Unsubscribe(sid, conn.GetID())

	var events []event.Eventer

	// [REPLAY] screens published between two polls are covered by the current one
	if ctrl, ok := h.sessions.Get(sid); ok {
		if ev := event.NewScreenEvent(sid, ctrl.Screen()); gate.Admit(ev) {
			events = append(events, ev)
		}
	}

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	// 3. Wait for data or timeout.
	for len(events) == 0 {
		select {
		case <-r.Context().Done():
			return

		case <-timer.C:
			w.WriteHeader(http.StatusNoContent)
			return

		case ev, ok := <-conn.Recv():
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			if gate.Admit(ev) {
				events = append(events, ev)
			}
		}
	}

	// Drain what is already queued to batch it into this response.
drainLoop:
	for range 15 {
		select {
		case next, ok := <-conn.Recv():
			if !ok {
				break drainLoop
			}
			if gate.Admit(next) {
				events = append(events, next)
			}
		default:
			break drainLoop
		}
	}

	// 4. Final transmission.
	data, err := lpmarshaller.MarshallEvents(events)
	if err != nil {
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
