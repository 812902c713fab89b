package account_test

import (
	"context"
	"sync"
	"time"

	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/internal/account/repo"
)

// memUserRepo is an in-memory account.UserRepository with the same
// uniqueness semantics as the Postgres implementation.
type memUserRepo struct {
	mu   sync.Mutex
	seq  int64
	rows map[int64]*entity.User

	// createErr, when set, is returned by Create after the uniqueness
	// checks; used to simulate losing a registration race.
	createErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{rows: map[int64]*entity.User{}}
}

func copyUser(u *entity.User) *entity.User {
	c := *u
	if u.VerificationToken != nil {
		t := *u.VerificationToken
		c.VerificationToken = &t
	}
	if u.VerificationExpires != nil {
		e := *u.VerificationExpires
		c.VerificationExpires = &e
	}
	if u.LastLogin != nil {
		l := *u.LastLogin
		c.LastLogin = &l
	}
	return &c
}

func (m *memUserRepo) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.rows {
		if existing.Username == u.Username || existing.Email == u.Email {
			return repo.ErrDuplicate
		}
		if u.VerificationToken != nil && existing.VerificationToken != nil &&
			*existing.VerificationToken == *u.VerificationToken {
			return repo.ErrDuplicate
		}
	}
	m.seq++
	u.ID = m.seq
	u.CreatedAt = time.Now()
	m.rows[u.ID] = copyUser(u)
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[id]; ok {
		return copyUser(u), nil
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entity.User, 0, len(m.rows))
	for id := int64(1); id <= m.seq; id++ {
		if u, ok := m.rows[id]; ok {
			out = append(out, copyUser(u))
		}
	}
	return out, nil
}

func (m *memUserRepo) MarkVerified(ctx context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.VerificationToken != nil && *u.VerificationToken == token && u.Status == entity.StatusPending {
			u.Status = entity.StatusVerified
			u.VerificationToken = nil
			u.VerificationExpires = nil
			return true, nil
		}
	}
	return false, nil
}

func (m *memUserRepo) SetVerificationToken(ctx context.Context, id int64, token string, expires time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	for otherID, other := range m.rows {
		if otherID != id && other.VerificationToken != nil && *other.VerificationToken == token {
			return repo.ErrDuplicate
		}
	}
	u.VerificationToken = &token
	u.VerificationExpires = &expires
	return nil
}

func (m *memUserRepo) SetStatus(ctx context.Context, id int64, status entity.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Status = status
	return nil
}

func (m *memUserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.rows[id]
	if !ok {
		return repo.ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

// recordingNotifier captures lifecycle emails for assertions.
type recordingNotifier struct {
	mu            sync.Mutex
	verifications []string // tokens
	adminAlerts   []string // usernames
	decisions     []bool
}

func (n *recordingNotifier) SendVerification(u *entity.User, token string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.verifications = append(n.verifications, token)
}

func (n *recordingNotifier) SendAdminAlert(u *entity.User) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.adminAlerts = append(n.adminAlerts, u.Username)
}

func (n *recordingNotifier) SendDecision(u *entity.User, approved bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, approved)
}

// memSessionRepo is an in-memory session.SessionRepository.
type memSessionRepo struct {
	mu   sync.Mutex
	rows map[string]time.Time
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{rows: map[string]time.Time{}}
}

func (m *memSessionRepo) Save(ctx context.Context, id string, userID int64, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = expiresAt
	return nil
}

func (m *memSessionRepo) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.rows[id]
	if !ok {
		return false, nil
	}
	return exp.After(time.Now()), nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}
