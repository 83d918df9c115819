package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"greenhome/internal/objectstore"
	"greenhome/internal/workflow"
)

const (
	defaultMaxBody   = 1 << 20
	defaultMaxUpload = 20 << 20
)

// Options настраивает Handler.
type Options struct {
	TestLogin      bool
	MaxBodyBytes   int64
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Handler связывает HTTP с сервисом заявок, сессиями и хранилищем файлов.
type Handler struct {
	Service  *workflow.Service
	Sessions SessionStore
	Objects  objectstore.Store

	testLogin      bool
	maxBodyBytes   int64
	maxUploadBytes int64
	logger         *slog.Logger
}

func NewHandler(svc *workflow.Service, sessions SessionStore, objects objectstore.Store, opts Options) *Handler {
	if objects == nil {
		objects = objectstore.Disabled{}
	}
	h := &Handler{
		Service:        svc,
		Sessions:       sessions,
		Objects:        objects,
		testLogin:      opts.TestLogin,
		maxBodyBytes:   opts.MaxBodyBytes,
		maxUploadBytes: opts.MaxUploadBytes,
		logger:         opts.Logger,
	}
	if h.maxBodyBytes <= 0 {
		h.maxBodyBytes = defaultMaxBody
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = defaultMaxUpload
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	return h
}

// Routes собирает роутер со всеми маршрутами API.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)

		// вход и регистрация
		r.Post("/auth/register", h.RegisterHandler)
		r.Post("/auth/login", h.LoginHandler)
		r.Post("/auth/logout", h.LogoutHandler)
		r.Get("/logout", h.LogoutRedirectHandler)
		r.Get("/login", h.LoginRedirectHandler)
		if h.testLogin {
			r.Get("/test/users", h.TestUsersHandler)
			r.Post("/test/login/{userId}", h.TestLoginHandler)
		}

		r.Group(func(r chi.Router) {
			r.Use(h.RequireAuth)

			r.Get("/auth/user", h.CurrentUserHandler)

			r.Get("/profiles/me", h.GetProfileHandler)
			r.Post("/profiles", h.UpsertProfileHandler)
			r.Get("/auditors", h.ListAuditorsHandler)

			// заявки
			r.Get("/requests", h.ListRequestsHandler)
			r.Post("/requests", h.CreateRequestHandler)
			r.Get("/requests/{requestId}", h.GetRequestHandler)
			r.Patch("/requests/{requestId}", h.UpdateRequestHandler)

			// файлы
			r.Get("/requests/{requestId}/files", h.ListFilesHandler)
			r.Post("/files", h.CreateFileHandler)

			// аудит
			for _, p := range []string{"/requests/{requestId}/audit", "/requests/{requestId}/audits"} {
				r.Post(p, h.CreateAuditHandler)
				r.Patch(p, h.UpdateAuditHandler)
			}

			r.Post("/uploads/request-url", h.RequestUploadHandler)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)
		r.Put("/objects/uploads/{name}", h.PutObjectHandler)
		r.Get("/objects/*", h.GetObjectHandler)
	})

	return r
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody читает JSON тело запроса с ограничением размера.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read request body", workflow.ErrValidation)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty request body", workflow.ErrValidation)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: invalid JSON format", workflow.ErrValidation)
	}
	return nil
}

func requestIDParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "requestId"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid requestId", workflow.ErrValidation)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку сервиса в HTTP статус.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err)
		if status == http.StatusInternalServerError {
			msg = "Internal server error"
		}
	}
	writeJSON(w, status, map[string]string{"message": msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, workflow.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, objectstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrValidation), errors.Is(err, workflow.ErrConflict),
		errors.Is(err, objectstore.ErrInvalidPath), errors.Is(err, objectstore.ErrExists):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, objectstore.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, objectstore.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
