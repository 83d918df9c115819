package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
)

// Audit (Аудит): заключение аудитора по заявке. request_id уникален в таблице.
type Audit struct {
	ID            int                `db:"id"`
	RequestID     int                `db:"request_id"`
	AuditorID     string             `db:"auditor_id"`
	ChecklistData types.NullJSONText `db:"checklist_data"`
	Conclusion    *string            `db:"conclusion"`
	SubmittedAt   time.Time          `db:"submitted_at"`
}

const auditColumns = `id, request_id, auditor_id, checklist_data, conclusion, submitted_at`

// CreateAudit возвращает ErrDuplicate, если у заявки уже есть аудит.
func (s *Storage) CreateAudit(ctx context.Context, a *Audit) error {
	query := `
        INSERT INTO audits (request_id, auditor_id, checklist_data, conclusion)
        VALUES ($1, $2, $3, $4)
        RETURNING id, submitted_at`
	err := s.db.QueryRowContext(ctx, query, a.RequestID, a.AuditorID, a.ChecklistData, a.Conclusion).
		Scan(&a.ID, &a.SubmittedAt)
	return mapErr(err)
}

func (s *Storage) GetAuditByRequest(ctx context.Context, requestID int) (*Audit, error) {
	a := &Audit{}
	query := `SELECT ` + auditColumns + ` FROM audits WHERE request_id=$1`
	if err := s.db.GetContext(ctx, a, query, requestID); err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

func (s *Storage) ListAuditsForRequests(ctx context.Context, requestIDs []int) ([]Audit, error) {
	audits := []Audit{}
	if len(requestIDs) == 0 {
		return audits, nil
	}
	query, args, err := sqlx.In(`SELECT `+auditColumns+` FROM audits WHERE request_id IN (?)`, requestIDs)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &audits, s.db.Rebind(query), args...)
	return audits, mapErr(err)
}

func (s *Storage) UpdateAudit(ctx context.Context, a *Audit) error {
	query := `
        UPDATE audits
        SET checklist_data=$1, conclusion=$2
        WHERE id=$3`
	res, err := s.db.ExecContext(ctx, query, a.ChecklistData, a.Conclusion, a.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
