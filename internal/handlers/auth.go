package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"greenhome/internal/workflow"
	"greenhome/models"
)

// RegisterHandler создает пользователя с паролем и сразу открывает сессию.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in models.RegisterInput
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.Service.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Sessions.Write(w, r, *id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, id)
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in models.LoginInput
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := h.Service.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Sessions.Write(w, r, *id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// CurrentUserHandler отдает личность из сессии.
func (h *Handler) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, r, workflow.ErrUnauthenticated)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) LogoutRedirectHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Clear(w, r); err != nil {
		h.writeError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) LoginRedirectHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/test-login", http.StatusFound)
}

// TestUsersHandler перечисляет встроенные тестовые учетные записи.
func (h *Handler) TestUsersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, workflow.FixtureUsers())
}

// TestLoginHandler открывает сессию под тестовым пользователем без пароля.
func (h *Handler) TestLoginHandler(w http.ResponseWriter, r *http.Request) {
	fixtureID := chi.URLParam(r, "userId")
	id, ok := workflow.FixtureIdentity(fixtureID)
	if !ok {
		h.writeError(w, r, fmt.Errorf("test user %q: %w", fixtureID, workflow.ErrNotFound))
		return
	}
	if err := h.Service.EnsureUser(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.Sessions.Write(w, r, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": id})
}
