package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// File (Файл) прикреплен к заявке. URL хранит путь объекта как есть.
type File struct {
	ID        int       `db:"id"`
	RequestID int       `db:"request_id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	URL       string    `db:"url"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

const fileColumns = `id, request_id, user_id, name, url, type, created_at`

func (s *Storage) CreateFile(ctx context.Context, f *File) error {
	query := `
        INSERT INTO files (request_id, user_id, name, url, type)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, query, f.RequestID, f.UserID, f.Name, f.URL, f.Type).
		Scan(&f.ID, &f.CreatedAt)
	return mapErr(err)
}

func (s *Storage) ListFilesByRequest(ctx context.Context, requestID int) ([]File, error) {
	files := []File{}
	query := `SELECT ` + fileColumns + ` FROM files WHERE request_id=$1 ORDER BY id`
	err := s.db.SelectContext(ctx, &files, query, requestID)
	return files, mapErr(err)
}

func (s *Storage) ListFilesForRequests(ctx context.Context, requestIDs []int) ([]File, error) {
	files := []File{}
	if len(requestIDs) == 0 {
		return files, nil
	}
	query, args, err := sqlx.In(`SELECT `+fileColumns+` FROM files WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &files, s.db.Rebind(query), args...)
	return files, mapErr(err)
}
