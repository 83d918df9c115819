package workflow

import (
	"context"
	"errors"
	"fmt"

	"greenhome/db"
)

type Role string

const (
	RoleLegalEntity Role = "legal_entity"
	RoleAuditor     Role = "auditor"
	RoleAdmin       Role = "admin"
)

// ParseRole accepts only the three known roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleLegalEntity, RoleAuditor, RoleAdmin:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// ResolveRole returns the role stored in the user's profile, or
// RoleLegalEntity when the user has none.
func (s *Service) ResolveRole(ctx context.Context, userID string) (Role, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return RoleLegalEntity, nil
	}
	if err != nil {
		return "", fmt.Errorf("load profile: %w", err)
	}
	return Role(p.Role), nil
}

// scopeFilter is the visibility predicate shared by list and single reads.
// Roles other than legal_entity and auditor see everything.
func scopeFilter(role Role, userID string) db.RequestFilter {
	switch role {
	case RoleLegalEntity:
		return db.RequestFilter{OwnerID: userID}
	case RoleAuditor:
		return db.RequestFilter{AuditorID: userID}
	}
	return db.RequestFilter{}
}

func visible(f db.RequestFilter, r *db.Request) bool {
	if f.OwnerID != "" && r.UserID != f.OwnerID {
		return false
	}
	if f.AuditorID != "" && (r.AuditorID == nil || *r.AuditorID != f.AuditorID) {
		return false
	}
	return true
}

// Request fields by their external name.
const (
	fieldStatus       = "status"
	fieldProjectType  = "projectType"
	fieldProjectArea  = "projectArea"
	fieldLocation     = "location"
	fieldDescription  = "description"
	fieldPriceQuote   = "priceQuote"
	fieldAdminComment = "adminComment"
	fieldAuditorID    = "auditorId"
)

var mutableFields = map[Role]map[string]bool{
	RoleAdmin: {
		fieldStatus: true, fieldProjectType: true, fieldProjectArea: true, fieldLocation: true,
		fieldDescription: true, fieldPriceQuote: true, fieldAdminComment: true, fieldAuditorID: true,
	},
	RoleAuditor: {
		fieldStatus: true, fieldAdminComment: true,
	},
	RoleLegalEntity: {
		fieldProjectType: true, fieldProjectArea: true, fieldLocation: true, fieldDescription: true,
	},
}

// CanSetField reports whether role may change the named request field.
func CanSetField(role Role, field string) bool {
	return mutableFields[role][field]
}
