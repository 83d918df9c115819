package handlers

import (
	"net/http"

	"greenhome/models"
)

func (h *Handler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.Service.GetProfile(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// UpsertProfileHandler создает или обновляет профиль текущего пользователя.
func (h *Handler) UpsertProfileHandler(w http.ResponseWriter, r *http.Request) {
	uid, err := userID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var in models.ProfileInput
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.Service.UpsertProfile(r.Context(), uid, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) ListAuditorsHandler(w http.ResponseWriter, r *http.Request) {
	auditors, err := h.Service.ListAuditors(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, auditors)
}
