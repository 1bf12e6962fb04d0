package session

import (
	"net/http"

	"github.com/google/uuid"
)

// CookieName identifies a browser session.
const CookieName = "hangman_session"

// FromRequest returns the session id carried by the request cookie.
func FromRequest(r *http.Request) (uuid.UUID, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// Issue stores id in the session cookie.
func Issue(w http.ResponseWriter, id uuid.UUID, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
