package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"greenhome/internal/objectstore"
	"greenhome/internal/workflow"
	"greenhome/models"
)

// RequestUploadHandler выдает адрес, по которому клиент загрузит файл.
func (h *Handler) RequestUploadHandler(w http.ResponseWriter, r *http.Request) {
	var in models.UploadRequest
	if err := h.decodeBody(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		h.writeError(w, r, fmt.Errorf("%w: name is required", workflow.ErrValidation))
		return
	}
	if in.Size < 0 || in.Size > h.maxUploadBytes {
		h.writeError(w, r, fmt.Errorf("%w: size must be between 0 and %d bytes", workflow.ErrValidation, h.maxUploadBytes))
		return
	}
	target, err := h.Objects.RequestUpload(r.Context(), in.Name, in.ContentType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// PutObjectHandler принимает байты файла по выданному адресу.
func (h *Handler) PutObjectHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	defer r.Body.Close()

	if err := h.Objects.Put(r.Context(), r.URL.Path, r.Header.Get("Content-Type"), r.Body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = objectstore.ErrTooLarge
		}
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"objectPath": r.URL.Path})
}

// GetObjectHandler отдает сохраненный файл.
func (h *Handler) GetObjectHandler(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.Objects.Open(r.Context(), r.URL.Path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.WarnContext(r.Context(), "object stream interrupted", "path", r.URL.Path, "err", err)
	}
}
