// Package session maps a signed session cookie to the identity of the
// logged-in user. The cookie only carries an opaque token; the identity
// lives in a Backend keyed by that token.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"greenhome/models"
)

const (
	CookieName = "greenhome_session"
	tokenKey   = "token"
	keyPrefix  = "session:"
)

type Manager struct {
	cookies sessions.Store
	backend Backend
	ttl     time.Duration
}

func NewManager(cookies sessions.Store, backend Backend, ttl time.Duration) *Manager {
	return &Manager{cookies: cookies, backend: backend, ttl: ttl}
}

// NewCookieStore builds the signed cookie store used for the session token.
func NewCookieStore(secret []byte, maxAge time.Duration, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Lookup returns the identity bound to the request's session cookie.
// ok is false when there is no cookie, the cookie is invalid, or the
// backend no longer knows the token.
func (m *Manager) Lookup(r *http.Request) (id models.Identity, ok bool, err error) {
	token := m.token(r)
	if token == "" {
		return models.Identity{}, false, nil
	}
	raw, err := m.backend.Get(r.Context(), keyPrefix+token)
	if errors.Is(err, ErrMissing) {
		return models.Identity{}, false, nil
	}
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("session lookup: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &id); err != nil || id.ID == "" {
		return models.Identity{}, false, nil
	}
	return id, true, nil
}

// Write opens a fresh session for id, replacing any previous one.
func (m *Manager) Write(w http.ResponseWriter, r *http.Request, id models.Identity) error {
	if old := m.token(r); old != "" {
		if err := m.backend.Del(r.Context(), keyPrefix+old); err != nil {
			slog.WarnContext(r.Context(), "previous session not removed", "err", err)
		}
	}
	payload, err := json.Marshal(id)
	if err != nil {
		return err
	}
	token := uuid.NewString()
	if err := m.backend.Set(r.Context(), keyPrefix+token, string(payload), m.ttl); err != nil {
		return fmt.Errorf("session write: %w", err)
	}
	sess, _ := m.cookies.Get(r, CookieName)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear drops the backend entry and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	if token := m.token(r); token != "" {
		if err := m.backend.Del(r.Context(), keyPrefix+token); err != nil {
			return fmt.Errorf("session clear: %w", err)
		}
	}
	sess, _ := m.cookies.Get(r, CookieName)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

func (m *Manager) token(r *http.Request) string {
	sess, err := m.cookies.Get(r, CookieName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}
