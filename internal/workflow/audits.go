package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx/types"

	"greenhome/db"
	"greenhome/models"
)

// CreateAudit files the single audit of a request. The caller becomes the
// audit's auditor. A second audit for the same request fails with
// ErrConflict, whether caught by the lookup or by the unique index.
func (s *Service) CreateAudit(ctx context.Context, requestID int, userID string, in models.AuditInput) (*models.AuditView, error) {
	role, err := s.ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if role != RoleAuditor && role != RoleAdmin {
		return nil, fmt.Errorf("%w: only auditors file audits", ErrForbidden)
	}
	if _, err := s.scopedRequest(ctx, requestID, role, userID); err != nil {
		return nil, err
	}

	_, err = s.store.GetAuditByRequest(ctx, requestID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: audit already exists for request %d", ErrConflict, requestID)
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("get audit: %w", err)
	}

	checklist, err := encodeChecklist(in.ChecklistData)
	if err != nil {
		return nil, err
	}
	a := &db.Audit{
		RequestID:     requestID,
		AuditorID:     userID,
		ChecklistData: checklist,
		Conclusion:    in.Conclusion,
	}
	if err := s.store.CreateAudit(ctx, a); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: audit already exists for request %d", ErrConflict, requestID)
		}
		return nil, fmt.Errorf("create audit: %w", err)
	}
	s.logger.InfoContext(ctx, "audit created", "request_id", requestID, "auditor_id", userID)
	view := auditView(a)
	return &view, nil
}

// UpdateAudit merges the supplied fields into the request's audit. Only the
// audit's own auditor or an admin may amend it.
func (s *Service) UpdateAudit(ctx context.Context, requestID int, userID string, in models.AuditInput) (*models.AuditView, error) {
	a, err := s.store.GetAuditByRequest(ctx, requestID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("audit for request %d: %w", requestID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get audit: %w", err)
	}
	if a.AuditorID != userID {
		role, err := s.ResolveRole(ctx, userID)
		if err != nil {
			return nil, err
		}
		if role != RoleAdmin {
			return nil, fmt.Errorf("%w: audit belongs to another auditor", ErrForbidden)
		}
	}

	if in.ChecklistData != nil {
		checklist, err := encodeChecklist(in.ChecklistData)
		if err != nil {
			return nil, err
		}
		a.ChecklistData = checklist
	}
	if in.Conclusion != nil {
		a.Conclusion = in.Conclusion
	}
	if err := s.store.UpdateAudit(ctx, a); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("audit for request %d: %w", requestID, ErrNotFound)
		}
		return nil, fmt.Errorf("update audit: %w", err)
	}
	s.logger.InfoContext(ctx, "audit updated", "request_id", requestID, "user_id", userID)
	view := auditView(a)
	return &view, nil
}

func encodeChecklist(data map[string]interface{}) (types.NullJSONText, error) {
	if data == nil {
		return types.NullJSONText{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return types.NullJSONText{}, fmt.Errorf("%w: checklistData: %v", ErrValidation, err)
	}
	return types.NullJSONText{JSONText: types.JSONText(raw), Valid: true}, nil
}

func auditView(a *db.Audit) models.AuditView {
	return models.AuditView{
		ID:            a.ID,
		RequestID:     a.RequestID,
		AuditorID:     a.AuditorID,
		ChecklistData: checklistJSON(*a),
		Conclusion:    a.Conclusion,
		SubmittedAt:   a.SubmittedAt,
	}
}
