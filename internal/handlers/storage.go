package handlers

import (
	"net/http"

	"greenhome/models"
)

// SessionStore хранит личность пользователя между запросами.
type SessionStore interface {
	Lookup(r *http.Request) (models.Identity, bool, error)
	Write(w http.ResponseWriter, r *http.Request, id models.Identity) error
	Clear(w http.ResponseWriter, r *http.Request) error
}
