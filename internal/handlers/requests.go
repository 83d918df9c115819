package handlers

import (
	"net/http"

	"greenhome/models"
)

// ListRequestsHandler обрабатывает GET /api/requests
func (h *Handler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	requests, err := h.Service.ListRequests(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// GetRequestHandler обрабатывает GET /api/requests/{requestId}
func (h *Handler) GetRequestHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := requestIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.Service.GetRequest(r.Context(), id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// CreateRequestHandler обрабатывает POST /api/requests
func (h *Handler) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.RequestCreate
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.Service.CreateRequest(r.Context(), uid, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// UpdateRequestHandler обрабатывает PATCH /api/requests/{requestId}.
// Поля, которых нет в теле, не меняются.
func (h *Handler) UpdateRequestHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	id, err := requestIDParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var patch models.RequestPatch
	if err := h.decodeBody(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	req, err := h.Service.UpdateRequest(r.Context(), id, uid, patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
