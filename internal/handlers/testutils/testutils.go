// Package testutils holds request helpers for handler tests.
package testutils

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"greenhome/internal/handlers"
	"greenhome/models"
)

// WithChiURLParams кладет параметры пути в контекст chi, как это делает роутер.
func WithChiURLParams(req *http.Request, params map[string]string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AsUser помечает запрос как пришедший от userID в обход сессии.
func AsUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(handlers.ContextWithIdentity(req.Context(), models.Identity{ID: userID}))
}
