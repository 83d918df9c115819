package workflow

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"greenhome/db"
	"greenhome/models"
)

// EnsureUser makes sure a user row exists for the session identity. It is
// idempotent and never overwrites an existing row.
func (s *Service) EnsureUser(ctx context.Context, id models.Identity) error {
	if id.ID == "" {
		return ErrUnauthenticated
	}
	u := &db.User{
		ID:        id.ID,
		Email:     optional(id.Email),
		FirstName: optional(id.FirstName),
		LastName:  optional(id.LastName),
	}
	if err := s.store.EnsureUser(ctx, u); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

// Register creates a password account and returns its session identity.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (*models.Identity, error) {
	email := strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}

	_, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	case !errors.Is(err, db.ErrNotFound):
		return nil, fmt.Errorf("get user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)
	u := &db.User{
		ID:           uuid.NewString(),
		Email:        &email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: &hashStr,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", u.ID)
	id := identityOf(u)
	return &id, nil
}

// Login checks the password of an account that has one.
func (s *Service) Login(ctx context.Context, in models.LoginInput) (*models.Identity, error) {
	u, err := s.store.GetUserByEmail(ctx, strings.TrimSpace(in.Email))
	if errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u.PasswordHash == nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}
	id := identityOf(u)
	return &id, nil
}

func identityOf(u *db.User) models.Identity {
	return models.Identity{
		ID:        u.ID,
		Sub:       u.ID,
		Email:     deref(u.Email),
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
