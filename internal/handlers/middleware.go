package handlers

import (
	"context"
	"net/http"

	"greenhome/internal/workflow"
	"greenhome/models"
)

type ctxKey struct{}

func ContextWithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(models.Identity)
	return id, ok
}

// RequireAuth resolves the session, makes sure the user row exists and
// puts the identity into the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok, err := h.Sessions.Lookup(r)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if !ok || id.ID == "" {
			h.writeError(w, r, workflow.ErrUnauthenticated)
			return
		}
		if err := h.Service.EnsureUser(r.Context(), id); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

// userID reads the caller set by RequireAuth.
func userID(r *http.Request) (string, error) {
	id, ok := IdentityFrom(r.Context())
	if !ok || id.ID == "" {
		return "", workflow.ErrUnauthenticated
	}
	return id.ID, nil
}
