package db

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrNotFound: запрос одной строки ничего не нашел.
	ErrNotFound = errors.New("db: not found")
	// ErrDuplicate: вставка нарушила уникальное ограничение.
	ErrDuplicate = errors.New("db: duplicate")
	// ErrBadReference: внешний ключ ссылается на несуществующую строку.
	ErrBadReference = errors.New("db: bad reference")
)

// Коды SQLSTATE Postgres.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

// mapErr переводит ошибки драйвера в ошибки пакета.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return ErrDuplicate
		case foreignKeyViolation:
			return ErrBadReference
		}
	}
	return err
}
