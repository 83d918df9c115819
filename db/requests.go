package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Request (Заявка) на сертификацию.
type Request struct {
	ID           int       `db:"id"`
	UserID       string    `db:"user_id"`
	AuditorID    *string   `db:"auditor_id"`
	Status       string    `db:"status"`
	ProjectType  string    `db:"project_type"`
	ProjectArea  *string   `db:"project_area"`
	Location     *string   `db:"location"`
	Description  *string   `db:"description"`
	PriceQuote   *int64    `db:"price_quote"`
	AdminComment *string   `db:"admin_comment"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// RequestFilter сужает ListRequests. Пустые поля не фильтруют.
type RequestFilter struct {
	OwnerID   string
	AuditorID string
}

const requestColumns = `id, user_id, auditor_id, status, project_type, project_area, location,
        description, price_quote, admin_comment, created_at, updated_at`

func (s *Storage) CreateRequest(ctx context.Context, r *Request) error {
	query := `
        INSERT INTO requests
            (user_id, auditor_id, status, project_type, project_area, location, description, price_quote, admin_comment)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		r.UserID, r.AuditorID, r.Status, r.ProjectType, r.ProjectArea, r.Location,
		r.Description, r.PriceQuote, r.AdminComment).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) GetRequest(ctx context.Context, id int) (*Request, error) {
	r := &Request{}
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id=$1`
	if err := s.db.GetContext(ctx, r, query, id); err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

// ListRequests отдает заявки, новые первыми.
func (s *Storage) ListRequests(ctx context.Context, f RequestFilter) ([]Request, error) {
	var (
		conds []string
		args  []interface{}
	)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.AuditorID != "" {
		args = append(args, f.AuditorID)
		conds = append(conds, fmt.Sprintf("auditor_id = $%d", len(args)))
	}

	query := `SELECT ` + requestColumns + ` FROM requests`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	requests := []Request{}
	err := s.db.SelectContext(ctx, &requests, query, args...)
	if err != nil {
		return nil, mapErr(err)
	}
	return requests, nil
}

// UpdateRequest перезаписывает изменяемые колонки и обновляет updated_at.
func (s *Storage) UpdateRequest(ctx context.Context, r *Request) error {
	query := `
        UPDATE requests
        SET auditor_id=$1, status=$2, project_type=$3, project_area=$4, location=$5,
            description=$6, price_quote=$7, admin_comment=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	err := s.db.QueryRowContext(ctx, query,
		r.AuditorID, r.Status, r.ProjectType, r.ProjectArea, r.Location,
		r.Description, r.PriceQuote, r.AdminComment, r.ID).
		Scan(&r.UpdatedAt)
	return mapErr(err)
}
