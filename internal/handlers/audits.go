package handlers

import (
	"net/http"

	"greenhome/models"
)

// CreateAuditHandler обрабатывает POST /api/requests/{requestId}/audit.
// Второй аудит для той же заявки отклоняется.
func (h *Handler) CreateAuditHandler(w http.ResponseWriter, r *http.Request) {
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
	var in models.AuditInput
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	audit, err := h.Service.CreateAudit(r.Context(), id, uid, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, audit)
}

// UpdateAuditHandler обрабатывает PATCH /api/requests/{requestId}/audit
func (h *Handler) UpdateAuditHandler(w http.ResponseWriter, r *http.Request) {
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
	var in models.AuditInput
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	audit, err := h.Service.UpdateAudit(r.Context(), id, uid, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}
