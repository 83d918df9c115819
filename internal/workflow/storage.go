package workflow

import (
	"context"

	"greenhome/db"
)

// Storage is the persistence the workflow runs on. *db.Storage implements it.
type Storage interface {
	EnsureUser(ctx context.Context, u *db.User) error
	CreateUser(ctx context.Context, u *db.User) error
	GetUser(ctx context.Context, id string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	SeedUser(ctx context.Context, u *db.User, p *db.Profile) error
	GetUserSummaries(ctx context.Context, ids []string) ([]db.UserSummary, error)
	ListAuditors(ctx context.Context) ([]db.User, error)

	GetProfile(ctx context.Context, userID string) (*db.Profile, error)
	UpsertProfile(ctx context.Context, p *db.Profile) error

	CreateRequest(ctx context.Context, r *db.Request) error
	GetRequest(ctx context.Context, id int) (*db.Request, error)
	ListRequests(ctx context.Context, f db.RequestFilter) ([]db.Request, error)
	UpdateRequest(ctx context.Context, r *db.Request) error

	CreateFile(ctx context.Context, f *db.File) error
	ListFilesByRequest(ctx context.Context, requestID int) ([]db.File, error)
	ListFilesForRequests(ctx context.Context, requestIDs []int) ([]db.File, error)

	CreateAudit(ctx context.Context, a *db.Audit) error
	GetAuditByRequest(ctx context.Context, requestID int) (*db.Audit, error)
	ListAuditsForRequests(ctx context.Context, requestIDs []int) ([]db.Audit, error)
	UpdateAudit(ctx context.Context, a *db.Audit) error
}

var _ Storage = (*db.Storage)(nil)
