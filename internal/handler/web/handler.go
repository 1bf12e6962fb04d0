package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/webitel/hangman-client/internal/domain/model"
	"github.com/webitel/hangman-client/internal/handler/session"
	"github.com/webitel/hangman-client/internal/service"
)

//go:embed templates/*.html
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/page.html"))

// Handler serves the game to a browser. Every action runs against the
// controller of the caller's session and answers with the new screen.
type Handler struct {
	sessions     *session.Store
	logger       *slog.Logger
	secureCookie bool
}

func NewHandler(sessions *session.Store, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{
		sessions:     sessions,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

// Routes mounts the page and its form actions.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/game", h.Game)
	r.Get("/screen", h.Screen)
	r.Post("/new", h.NewGame)
	r.Post("/guess", h.Guess)
	r.Post("/chips/{letter}/dismiss", h.DismissChip)
	r.Post("/refresh", h.Refresh)
}

// Home is the page load: it starts a new game for the session.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	// failures are already on the screen
	_ = ctrl.StartNewGame(r.Context())
	h.render(w, r, ctrl.Screen())
}

func (h *Handler) Game(w http.ResponseWriter, r *http.Request) {
	ctrl, created := h.acquire(w, r)
	if created {
		_ = ctrl.StartNewGame(r.Context())
	}
	h.render(w, r, ctrl.Screen())
}

func (h *Handler) Screen(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.existing(r)
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	writeJSON(w, ctrl.Screen())
}

func (h *Handler) NewGame(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)
	_ = ctrl.StartNewGame(r.Context())
	h.respond(w, r, ctrl)
}

// Guess accepts either a keyboard key ("key") or the text of the input box ("letter").
func (h *Handler) Guess(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.existing(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	var err error
	if key := r.PostForm.Get("key"); key != "" {
		if !keyEnabled(ctrl.Screen(), key) {
			h.respond(w, r, ctrl)
			return
		}
		err = ctrl.GuessLetter(r.Context(), key)
	} else {
		ctrl.SetInput(r.PostForm.Get("letter"))
		err = ctrl.SubmitInput(r.Context())
	}

	if errors.Is(err, service.ErrNoGame) || errors.Is(err, service.ErrGuessDisabled) {
		h.logger.Debug("WEB_GUESS_IGNORED", slog.Any("err", err))
	}
	h.respond(w, r, ctrl)
}

func (h *Handler) DismissChip(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.existing(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	ctrl.DismissChip(chi.URLParam(r, "letter"))
	h.respond(w, r, ctrl)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctrl, ok := h.existing(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	_ = ctrl.Refresh(r.Context())
	h.respond(w, r, ctrl)
}

// controller returns the session controller, issuing a session when the browser has none.
func (h *Handler) controller(w http.ResponseWriter, r *http.Request) *service.Controller {
	ctrl, _ := h.acquire(w, r)
	return ctrl
}

func (h *Handler) acquire(w http.ResponseWriter, r *http.Request) (*service.Controller, bool) {
	sid, ok := session.FromRequest(r)
	if !ok {
		sid = uuid.New()
		session.Issue(w, sid, h.secureCookie)
	}
	return h.sessions.Acquire(sid)
}

func (h *Handler) existing(r *http.Request) (*service.Controller, bool) {
	sid, ok := session.FromRequest(r)
	if !ok {
		return nil, false
	}
	return h.sessions.Get(sid)
}

// respond answers fetch() callers with JSON and plain form posts with a redirect.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, ctrl *service.Controller) {
	if wantsJSON(r) {
		writeJSON(w, ctrl.Screen())
		return
	}
	http.Redirect(w, r, "/game", http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, screen model.Screen) {
	if wantsJSON(r) {
		writeJSON(w, screen)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := page.Execute(w, screen); err != nil {
		h.logger.Error("WEB_RENDER_FAILED", slog.Any("err", err))
	}
}

func keyEnabled(screen model.Screen, letter string) bool {
	letter = strings.ToLower(strings.TrimSpace(letter))
	for _, k := range screen.Keys {
		if k.Letter == letter {
			return !k.Disabled
		}
	}
	return false
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}
