package workflow

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"greenhome/db"
	"greenhome/models"
)

type fixture struct {
	user     models.FixtureUser
	password string
}

func orgName(s string) *string { return &s }

var fixtures = []fixture{
	{models.FixtureUser{ID: "auditor-001", Email: "john.smith@greenhome.mn", FirstName: "John", LastName: "Smith", Role: string(RoleAuditor)}, "test123"},
	{models.FixtureUser{ID: "auditor-002", Email: "maria.garcia@greenhome.mn", FirstName: "Maria", LastName: "Garcia", Role: string(RoleAuditor)}, "test123"},
	{models.FixtureUser{ID: "auditor-003", Email: "david.chen@greenhome.mn", FirstName: "David", LastName: "Chen", Role: string(RoleAuditor)}, "test123"},
	{models.FixtureUser{ID: "legal-001", Email: "contact@buildco.mn", FirstName: "Батбаяр", LastName: "Ганбат", Role: string(RoleLegalEntity), OrganizationName: orgName("BuildCo ХХК")}, "test123"},
	{models.FixtureUser{ID: "legal-002", Email: "info@greenbuilders.mn", FirstName: "Оюунтуяа", LastName: "Батсүх", Role: string(RoleLegalEntity), OrganizationName: orgName("Green Builders ХХК")}, "test123"},
	{models.FixtureUser{ID: "admin-001", Email: "admin@greenhome.mn", FirstName: "Admin", LastName: "User", Role: string(RoleAdmin)}, "admin123"},
}

// FixtureUsers lists the built-in accounts.
func FixtureUsers() []models.FixtureUser {
	out := make([]models.FixtureUser, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, f.user)
	}
	return out
}

// FixtureIdentity returns the session identity of a built-in account.
func FixtureIdentity(userID string) (models.Identity, bool) {
	for _, f := range fixtures {
		if f.user.ID == userID {
			return models.Identity{
				ID:        f.user.ID,
				Sub:       f.user.ID,
				Email:     f.user.Email,
				FirstName: f.user.FirstName,
				LastName:  f.user.LastName,
			}, true
		}
	}
	return models.Identity{}, false
}

// SeedFixtures creates the built-in accounts and their profiles if missing.
// Existing rows are kept as they are.
func (s *Service) SeedFixtures(ctx context.Context) error {
	for _, f := range fixtures {
		hash, err := bcrypt.GenerateFromPassword([]byte(f.password), s.passwordCost)
		if err != nil {
			return fmt.Errorf("hash fixture password: %w", err)
		}
		hashStr := string(hash)
		email := f.user.Email
		first, last := f.user.FirstName, f.user.LastName
		u := &db.User{
			ID:           f.user.ID,
			Email:        &email,
			FirstName:    &first,
			LastName:     &last,
			PasswordHash: &hashStr,
		}
		p := &db.Profile{
			UserID:           f.user.ID,
			Role:             f.user.Role,
			OrganizationName: f.user.OrganizationName,
		}
		if err := s.store.SeedUser(ctx, u, p); err != nil {
			return fmt.Errorf("seed %s: %w", f.user.ID, err)
		}
	}
	s.logger.InfoContext(ctx, "fixture users seeded", "count", len(fixtures))
	return nil
}
