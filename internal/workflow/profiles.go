package workflow

import (
	"context"
	"errors"
	"fmt"

	"greenhome/db"
	"greenhome/models"
)

// GetProfile returns the caller's own profile merged with its user record.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.ProfileView, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	view := profileView(p)
	u, err := s.store.GetUser(ctx, userID)
	switch {
	case err == nil:
		view.Email, view.FirstName, view.LastName = u.Email, u.FirstName, u.LastName
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &view, nil
}

// UpsertProfile replaces the caller's profile, creating it on first write.
func (s *Service) UpsertProfile(ctx context.Context, userID string, in models.ProfileInput) (*models.ProfileView, error) {
	if in.Role == "" {
		in.Role = string(RoleLegalEntity)
	}
	role, err := ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	p := &db.Profile{
		UserID:           userID,
		Role:             string(role),
		OrganizationName: in.OrganizationName,
		PhoneNumber:      in.PhoneNumber,
		Address:          in.Address,
	}
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	view := profileView(p)
	return &view, nil
}

// SetRole changes only the role of an existing user, keeping the other
// profile fields.
func (s *Service) SetRole(ctx context.Context, userID string, role Role) error {
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return fmt.Errorf("get user: %w", err)
	}
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		p = &db.Profile{UserID: userID}
	} else if err != nil {
		return fmt.Errorf("get profile: %w", err)
	}
	p.Role = string(role)
	if err := s.store.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	s.logger.InfoContext(ctx, "role changed", "user_id", userID, "role", role)
	return nil
}

// ListAuditors returns every user whose profile role is auditor.
func (s *Service) ListAuditors(ctx context.Context) ([]models.AuditorSummary, error) {
	users, err := s.store.ListAuditors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list auditors: %w", err)
	}
	out := make([]models.AuditorSummary, 0, len(users))
	for _, u := range users {
		out = append(out, models.AuditorSummary{
			ID:        u.ID,
			Email:     u.Email,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		})
	}
	return out, nil
}

func profileView(p *db.Profile) models.ProfileView {
	return models.ProfileView{
		ID:               p.ID,
		UserID:           p.UserID,
		Role:             p.Role,
		OrganizationName: p.OrganizationName,
		PhoneNumber:      p.PhoneNumber,
		Address:          p.Address,
	}
}
