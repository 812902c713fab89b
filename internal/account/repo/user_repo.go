package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/pssiii/marketing-backend/internal/account/entity"
)

// ErrDuplicate is returned when an insert violates a unique index
// (username, email or verification token).
var ErrDuplicate = errors.New("duplicate key")

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("user not found")

// UserRepo provides data access for the users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// EnsureTable creates the users table if not exists (idempotent).
// The unique indexes are what enforce the registration and token
// invariants under concurrency; the application never locks.
func (r *UserRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  is_admin BOOLEAN NOT NULL DEFAULT false,
  verification_token TEXT UNIQUE,
  verification_expires TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  last_login TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_users_status ON users(status);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const userColumns = `id, username, email, password_hash, first_name, last_name,
	status, is_admin, verification_token, verification_expires, created_at, last_login`

// Create inserts a new user row and fills in the generated ID.
// Unique-index violations surface as ErrDuplicate so concurrent
// registrations with the same username or email have exactly one winner.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users
		(username, email, password_hash, first_name, last_name, status, is_admin, verification_token, verification_expires)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, q,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.Status, u.IsAdmin, u.VerificationToken, u.VerificationExpires,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id=$1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByUsername fetches by username or returns ErrNotFound.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE username=$1`, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByEmail fetches by email or returns ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email=$1`, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByVerificationToken fetches by exact token match.
func (r *UserRepo) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	var u entity.User
	if err := r.db.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE verification_token=$1`, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// List returns all users ordered by creation time.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	var users []*entity.User
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY created_at`); err != nil {
		return nil, err
	}
	return users, nil
}

// MarkVerified flips a pending user to verified and clears the token in
// the same statement, which is what makes the token single-use: a replay
// matches zero rows.
func (r *UserRepo) MarkVerified(ctx context.Context, token string) (bool, error) {
	const q = `UPDATE users
		SET status=$1, verification_token=NULL, verification_expires=NULL
		WHERE verification_token=$2 AND status=$3
		RETURNING 1`
	var one int
	err := r.db.GetContext(ctx, &one, q, entity.StatusVerified, token, entity.StatusPending)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// SetVerificationToken overwrites the outstanding token, invalidating
// any prior one for the user.
func (r *UserRepo) SetVerificationToken(ctx context.Context, id int64, token string, expires time.Time) error {
	const q = `UPDATE users SET verification_token=$2, verification_expires=$3 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q, id, token, expires)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus updates the lifecycle state.
func (r *UserRepo) SetStatus(ctx context.Context, id int64, status entity.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login=NOW() WHERE id=$1`, id)
	return err
}
