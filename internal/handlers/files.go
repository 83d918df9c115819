package handlers

import (
	"net/http"

	"greenhome/models"
)

// ListFilesHandler обрабатывает GET /api/requests/{requestId}/files
func (h *Handler) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
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
	files, err := h.Service.ListFiles(r.Context(), id, uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, files)
}

// CreateFileHandler обрабатывает POST /api/files
func (h *Handler) CreateFileHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.FileCreate
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	file, err := h.Service.CreateFile(r.Context(), uid, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, file)
}
