// Package workflow implements the certification request lifecycle: role
// resolution, role-scoped request access, attachments, audits and accounts.
package workflow

import (
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// StatusSubmitted is the status of every freshly created request.
const StatusSubmitted = "submitted"

type Service struct {
	store        Storage
	logger       *slog.Logger
	passwordCost int
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPasswordCost overrides the bcrypt cost used for new password hashes.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

func NewService(store Storage, opts ...Option) *Service {
	s := &Service{
		store:        store,
		logger:       slog.Default(),
		passwordCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
