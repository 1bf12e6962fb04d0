package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/event"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/service"
)

type stubGame struct{}

func (stubGame) NewGame(context.Context) (model.GameState, error) {
	return model.GameState{ID: "g1", MaskedWord: "__t", Status: model.StatusPlaying}, nil
}

func (stubGame) Guess(context.Context, string, string) (model.GameState, error) {
	return model.GameState{}, nil
}

func (stubGame) State(context.Context, string) (model.GameState, error) {
	return model.GameState{}, nil
}

type dispatcher struct {
	mu     sync.Mutex
	events []*event.ScreenEvent
}

func (d *dispatcher) Publish(_ context.Context, ev *event.ScreenEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func newStore(t *testing.T, size int, d *dispatcher) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewStore(size, service.NewFactory(stubGame{}, logger), d, logger)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return s
}

func TestAcquireReusesController(t *testing.T) {
	s := newStore(t, 4, &dispatcher{})
	id := uuid.New()

	first, created := s.Acquire(id)
	if !created {
		t.Fatal("first acquire must create")
	}
	second, created := s.Acquire(id)
	if created || first != second {
		t.Error("second acquire must return the same controller")
	}
	if got, ok := s.Get(id); !ok || got != first {
		t.Error("Get does not find the session")
	}
}

func TestStoreEvictsLeastRecentlyUsed(t *testing.T) {
	s := newStore(t, 2, &dispatcher{})
	a, b, c := uuid.New(), uuid.New(), uuid.New()

	s.Acquire(a)
	s.Acquire(b)
	s.Get(a)
	s.Acquire(c)

	if _, ok := s.Get(b); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := s.Get(a); !ok {
		t.Error("a was used recently and must stay")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d", s.Len())
	}
}

func TestScreensArePublishedForTheirSession(t *testing.T) {
	d := &dispatcher{}
	s := newStore(t, 4, d)
	id := uuid.New()

	ctrl, _ := s.Acquire(id)
	if err := ctrl.StartNewGame(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	if len(d.events) != 2 {
		t.Fatalf("published %d events", len(d.events))
	}
	for _, ev := range d.events {
		if ev.GetSessionID() != id {
			t.Errorf("event for session %s", ev.GetSessionID())
		}
	}
	if d.events[1].Screen().MaskedWord != "_ _ t" {
		t.Errorf("last screen = %+v", d.events[1].Screen())
	}
}

func TestCookieRoundTrip(t *testing.T) {
	id := uuid.New()
	rec := httptest.NewRecorder()
	Issue(rec, id, true)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || !cookies[0].HttpOnly || !cookies[0].Secure {
		t.Fatalf("cookies = %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	got, ok := FromRequest(req)
	if !ok || got != id {
		t.Errorf("FromRequest = %s, %v", got, ok)
	}
}

func TestFromRequestRejectsGarbage(t *testing.T) {
	for _, v := range []string{"", "not-a-uuid", uuid.Nil.String()} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if v != "" {
			req.AddCookie(&http.Cookie{Name: CookieName, Value: v})
		}
		if _, ok := FromRequest(req); ok {
			t.Errorf("accepted %q", v)
		}
	}
}
