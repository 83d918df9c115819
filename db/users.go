package db

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// User (Пользователь). id выдается вне базы: тестовые id, subject сессии
// или UUID при регистрации.
type User struct {
	ID              string    `db:"id"`
	Email           *string   `db:"email"`
	FirstName       *string   `db:"first_name"`
	LastName        *string   `db:"last_name"`
	ProfileImageURL *string   `db:"profile_image_url"`
	PasswordHash    *string   `db:"password_hash"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// UserSummary (Краткие данные): пользователь с публичной частью профиля.
type UserSummary struct {
	ID               string  `db:"id"`
	Email            *string `db:"email"`
	FirstName        *string `db:"first_name"`
	LastName         *string `db:"last_name"`
	Role             *string `db:"role"`
	OrganizationName *string `db:"organization_name"`
}

// Profile (Профиль) хранит роль пользователя.
type Profile struct {
	ID               int     `db:"id"`
	UserID           string  `db:"user_id"`
	Role             string  `db:"role"`
	OrganizationName *string `db:"organization_name"`
	PhoneNumber      *string `db:"phone_number"`
	Address          *string `db:"address"`
}

const userColumns = `id, email, first_name, last_name, profile_image_url, password_hash, created_at, updated_at`

// EnsureUser вставляет пользователя, если строки с таким id (или email)
// еще нет. Существующие строки не меняются.
func (s *Storage) EnsureUser(ctx context.Context, u *User) error {
	query := `
        INSERT INTO users (id, email, first_name, last_name)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT DO NOTHING`
	_, err := s.db.ExecContext(ctx, query, u.ID, u.Email, u.FirstName, u.LastName)
	return mapErr(err)
}

func (s *Storage) CreateUser(ctx context.Context, u *User) error {
	query := `
        INSERT INTO users (id, email, first_name, last_name, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

func (s *Storage) GetUser(ctx context.Context, id string) (*User, error) {
	u := &User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	if err := s.db.GetContext(ctx, u, query, id); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u := &User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	if err := s.db.GetContext(ctx, u, query, email); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// SeedUser создает пользователя и профиль, если их нет. Хеш пароля
// пишется, только если у пользователя его еще нет.
func (s *Storage) SeedUser(ctx context.Context, u *User, p *Profile) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO users (id, email, first_name, last_name, password_hash)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE
            SET password_hash = COALESCE(users.password_hash, EXCLUDED.password_hash)`,
		u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash)
	if err != nil {
		return mapErr(err)
	}
	_, err = tx.ExecContext(ctx, `
        INSERT INTO profiles (user_id, role, organization_name)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO NOTHING`,
		u.ID, p.Role, p.OrganizationName)
	if err != nil {
		return mapErr(err)
	}
	return tx.Commit()
}

func (s *Storage) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	p := &Profile{}
	query := `
        SELECT id, user_id, role, organization_name, phone_number, address
        FROM profiles WHERE user_id=$1`
	if err := s.db.GetContext(ctx, p, query, userID); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// UpsertProfile пишет все колонки профиля, создавая строку при первом вызове.
func (s *Storage) UpsertProfile(ctx context.Context, p *Profile) error {
	query := `
        INSERT INTO profiles (user_id, role, organization_name, phone_number, address)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id) DO UPDATE
            SET role = EXCLUDED.role,
                organization_name = EXCLUDED.organization_name,
                phone_number = EXCLUDED.phone_number,
                address = EXCLUDED.address
        RETURNING id`
	err := s.db.QueryRowContext(ctx, query,
		p.UserID, p.Role, p.OrganizationName, p.PhoneNumber, p.Address).Scan(&p.ID)
	return mapErr(err)
}

func (s *Storage) ListAuditors(ctx context.Context) ([]User, error) {
	query := `
        SELECT u.id, u.email, u.first_name, u.last_name, u.profile_image_url, u.password_hash, u.created_at, u.updated_at
        FROM users u
        JOIN profiles p ON p.user_id = u.id
        WHERE p.role = 'auditor'
        ORDER BY u.id`
	users := []User{}
	err := s.db.SelectContext(ctx, &users, query)
	return users, mapErr(err)
}

// GetUserSummaries загружает пользователей с ролью и организацией.
// Неизвестные id пропускаются.
func (s *Storage) GetUserSummaries(ctx context.Context, ids []string) ([]UserSummary, error) {
	out := []UserSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`
        SELECT u.id, u.email, u.first_name, u.last_name, p.role, p.organization_name
        FROM users u
        LEFT JOIN profiles p ON p.user_id = u.id
        WHERE u.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	err = s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...)
	return out, mapErr(err)
}
