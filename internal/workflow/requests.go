package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"greenhome/db"
	"greenhome/models"
)

// ListRequests returns the requests visible to the caller, newest first,
// with their relations populated.
func (s *Service) ListRequests(ctx context.Context, userID string) ([]models.RequestView, error) {
	role, err := s.ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequests(ctx, scopeFilter(role, userID))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return s.assemble(ctx, requests)
}

// GetRequest returns one request with relations. Requests outside the
// caller's scope are reported as ErrNotFound.
func (s *Service) GetRequest(ctx context.Context, id int, userID string) (*models.RequestView, error) {
	req, err := s.visibleRequest(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	views, err := s.assemble(ctx, []db.Request{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) CreateRequest(ctx context.Context, userID string, in models.RequestCreate) (*models.RequestView, error) {
	if strings.TrimSpace(in.ProjectType) == "" {
		return nil, fmt.Errorf("%w: projectType is required", ErrValidation)
	}
	req := &db.Request{
		UserID:      userID,
		Status:      StatusSubmitted,
		ProjectType: in.ProjectType,
		ProjectArea: in.ProjectArea,
		Location:    in.Location,
		Description: in.Description,
	}
	if err := s.store.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.logger.InfoContext(ctx, "request created", "request_id", req.ID, "user_id", userID)
	view := requestView(req)
	return &view, nil
}

// UpdateRequest merges the supplied fields into the request. Every supplied
// field must be writable by the caller's role, otherwise nothing is applied.
func (s *Service) UpdateRequest(ctx context.Context, id int, userID string, patch models.RequestPatch) (*models.RequestView, error) {
	role, err := s.ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	req, err := s.scopedRequest(ctx, id, role, userID)
	if err != nil {
		return nil, err
	}
	for _, field := range suppliedFields(patch) {
		if !CanSetField(role, field) {
			return nil, fmt.Errorf("%w: role %s may not set %s", ErrForbidden, role, field)
		}
	}
	if patch.ProjectType != nil && strings.TrimSpace(*patch.ProjectType) == "" {
		return nil, fmt.Errorf("%w: projectType must not be empty", ErrValidation)
	}

	applyPatch(req, patch)
	if err := s.store.UpdateRequest(ctx, req); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
		}
		if errors.Is(err, db.ErrBadReference) {
			return nil, fmt.Errorf("%w: auditorId does not name a user", ErrValidation)
		}
		return nil, fmt.Errorf("update request: %w", err)
	}
	s.logger.InfoContext(ctx, "request updated", "request_id", id, "user_id", userID, "status", req.Status)
	view := requestView(req)
	return &view, nil
}

func (s *Service) visibleRequest(ctx context.Context, id int, userID string) (*db.Request, error) {
	role, err := s.ResolveRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.scopedRequest(ctx, id, role, userID)
}

func (s *Service) scopedRequest(ctx context.Context, id int, role Role, userID string) (*db.Request, error) {
	req, err := s.store.GetRequest(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	if !visible(scopeFilter(role, userID), req) {
		return nil, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	return req, nil
}

func suppliedFields(p models.RequestPatch) []string {
	var fields []string
	if p.Status != nil {
		fields = append(fields, fieldStatus)
	}
	if p.ProjectType != nil {
		fields = append(fields, fieldProjectType)
	}
	if p.ProjectArea != nil {
		fields = append(fields, fieldProjectArea)
	}
	if p.Location != nil {
		fields = append(fields, fieldLocation)
	}
	if p.Description != nil {
		fields = append(fields, fieldDescription)
	}
	if p.PriceQuote != nil {
		fields = append(fields, fieldPriceQuote)
	}
	if p.AdminComment != nil {
		fields = append(fields, fieldAdminComment)
	}
	if p.AuditorID != nil {
		fields = append(fields, fieldAuditorID)
	}
	return fields
}

func applyPatch(r *db.Request, p models.RequestPatch) {
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.ProjectType != nil {
		r.ProjectType = *p.ProjectType
	}
	if p.ProjectArea != nil {
		r.ProjectArea = p.ProjectArea
	}
	if p.Location != nil {
		r.Location = p.Location
	}
	if p.Description != nil {
		r.Description = p.Description
	}
	if p.PriceQuote != nil {
		r.PriceQuote = p.PriceQuote
	}
	if p.AdminComment != nil {
		r.AdminComment = p.AdminComment
	}
	if p.AuditorID != nil {
		r.AuditorID = p.AuditorID
	}
}
