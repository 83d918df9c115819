// Package workflowtest provides an in-memory workflow.Storage for tests.
package workflowtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"greenhome/db"
)

// MemStore mirrors the Postgres storage semantics closely enough for
// service and handler tests, including the unique indexes.
type MemStore struct {
	mu       sync.Mutex
	users    map[string]db.User
	profiles map[string]db.Profile
	requests map[int]db.Request
	files    []db.File
	audits   map[int]db.Audit

	nextID int
	now    time.Time

	// Err, when set, is returned by every method.
	Err error
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:    map[string]db.User{},
		profiles: map[string]db.Profile{},
		requests: map[int]db.Request{},
		audits:   map[int]db.Audit{},
		now:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp.
func (m *MemStore) tick() time.Time {
	m.now = m.now.Add(time.Second)
	return m.now
}

func (m *MemStore) id() int {
	m.nextID++
	return m.nextID
}

func (m *MemStore) emailTaken(email *string, exceptID string) bool {
	if email == nil {
		return false
	}
	for _, u := range m.users {
		if u.ID != exceptID && u.Email != nil && *u.Email == *email {
			return true
		}
	}
	return false
}

func (m *MemStore) EnsureUser(ctx context.Context, u *db.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[u.ID]; ok || m.emailTaken(u.Email, u.ID) {
		return nil
	}
	now := m.tick()
	cp := *u
	cp.CreatedAt, cp.UpdatedAt = now, now
	m.users[u.ID] = cp
	return nil
}

func (m *MemStore) CreateUser(ctx context.Context, u *db.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.users[u.ID]; ok || m.emailTaken(u.Email, u.ID) {
		return db.ErrDuplicate
	}
	now := m.tick()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[u.ID] = *u
	return nil
}

func (m *MemStore) GetUser(ctx context.Context, id string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &u, nil
}

func (m *MemStore) GetUserByEmail(ctx context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, u := range m.users {
		if u.Email != nil && *u.Email == email {
			return &u, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *MemStore) SeedUser(ctx context.Context, u *db.User, p *db.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if existing, ok := m.users[u.ID]; ok {
		if existing.PasswordHash == nil {
			existing.PasswordHash = u.PasswordHash
			m.users[u.ID] = existing
		}
	} else {
		if m.emailTaken(u.Email, u.ID) {
			return db.ErrDuplicate
		}
		now := m.tick()
		cp := *u
		cp.CreatedAt, cp.UpdatedAt = now, now
		m.users[u.ID] = cp
	}
	if _, ok := m.profiles[u.ID]; !ok {
		cp := *p
		cp.ID = m.id()
		cp.UserID = u.ID
		m.profiles[u.ID] = cp
	}
	return nil
}

func (m *MemStore) GetUserSummaries(ctx context.Context, ids []string) ([]db.UserSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []db.UserSummary{}
	for _, id := range ids {
		u, ok := m.users[id]
		if !ok {
			continue
		}
		s := db.UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
		if p, ok := m.profiles[id]; ok {
			role := p.Role
			s.Role = &role
			s.OrganizationName = p.OrganizationName
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *MemStore) ListAuditors(ctx context.Context) ([]db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []db.User{}
	for id, p := range m.profiles {
		if p.Role != "auditor" {
			continue
		}
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetProfile(ctx context.Context, userID string) (*db.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (m *MemStore) UpsertProfile(ctx context.Context, p *db.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if existing, ok := m.profiles[p.UserID]; ok {
		p.ID = existing.ID
	} else {
		p.ID = m.id()
	}
	m.profiles[p.UserID] = *p
	return nil
}

func (m *MemStore) CreateRequest(ctx context.Context, r *db.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	r.ID = m.id()
	now := m.tick()
	r.CreatedAt, r.UpdatedAt = now, now
	m.requests[r.ID] = *r
	return nil
}

func (m *MemStore) GetRequest(ctx context.Context, id int) (*db.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.requests[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &r, nil
}

func (m *MemStore) ListRequests(ctx context.Context, f db.RequestFilter) ([]db.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []db.Request{}
	for _, r := range m.requests {
		if f.OwnerID != "" && r.UserID != f.OwnerID {
			continue
		}
		if f.AuditorID != "" && (r.AuditorID == nil || *r.AuditorID != f.AuditorID) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemStore) UpdateRequest(ctx context.Context, r *db.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.requests[r.ID]
	if !ok {
		return db.ErrNotFound
	}
	if r.AuditorID != nil {
		if _, ok := m.users[*r.AuditorID]; !ok {
			return db.ErrBadReference
		}
	}
	r.UserID = existing.UserID
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = m.tick()
	m.requests[r.ID] = *r
	return nil
}

func (m *MemStore) CreateFile(ctx context.Context, f *db.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	f.ID = m.id()
	f.CreatedAt = m.tick()
	m.files = append(m.files, *f)
	return nil
}

func (m *MemStore) ListFilesByRequest(ctx context.Context, requestID int) ([]db.File, error) {
	return m.ListFilesForRequests(ctx, []int{requestID})
}

func (m *MemStore) ListFilesForRequests(ctx context.Context, requestIDs []int) ([]db.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	want := map[int]bool{}
	for _, id := range requestIDs {
		want[id] = true
	}
	out := []db.File{}
	for _, f := range m.files {
		if want[f.RequestID] {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemStore) CreateAudit(ctx context.Context, a *db.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.audits[a.RequestID]; ok {
		return db.ErrDuplicate
	}
	a.ID = m.id()
	a.SubmittedAt = m.tick()
	m.audits[a.RequestID] = *a
	return nil
}

func (m *MemStore) GetAuditByRequest(ctx context.Context, requestID int) (*db.Audit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	a, ok := m.audits[requestID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &a, nil
}

func (m *MemStore) ListAuditsForRequests(ctx context.Context, requestIDs []int) ([]db.Audit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := []db.Audit{}
	for _, id := range requestIDs {
		if a, ok := m.audits[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemStore) UpdateAudit(ctx context.Context, a *db.Audit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.audits[a.RequestID]
	if !ok || existing.ID != a.ID {
		return db.ErrNotFound
	}
	m.audits[a.RequestID] = *a
	return nil
}
