package account

import (
	"context"
	"errors"
	"time"

	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/internal/account/repo"
)

var (
	ErrBadCredentials    = errors.New("invalid username or password")
	ErrNotVerified       = errors.New("email not verified")
	ErrPendingApproval   = errors.New("account pending approval")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrConflict          = errors.New("username or email already registered")
	ErrTokenNotFound     = errors.New("invalid verification token")
	ErrTokenExpired      = errors.New("verification token expired")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidTransition = errors.New("account is not verified yet")
)

// UserRepository is the persistence surface the service needs. The sqlx
// implementation lives in repo; tests supply an in-memory one.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	MarkVerified(ctx context.Context, token string) (bool, error)
	SetVerificationToken(ctx context.Context, id int64, token string, expires time.Time) error
	SetStatus(ctx context.Context, id int64, status entity.Status) error
	TouchLastLogin(ctx context.Context, id int64) error
}

// Notifier dispatches lifecycle emails. Implementations are best-effort:
// calls never block the caller and failures never propagate back.
type Notifier interface {
	SendVerification(u *entity.User, token string)
	SendAdminAlert(u *entity.User)
	SendDecision(u *entity.User, approved bool)
}

// RegisterInput carries the five mandatory registration fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service orchestrates the account lifecycle: registration, email
// verification, admin approval and credential checks.
type Service struct {
	repo     UserRepository
	hasher   PasswordHasher
	notifier Notifier

	// Now is the clock used for token expiry checks; replaceable in tests.
	Now func() time.Time
}

func NewService(r UserRepository, hasher PasswordHasher, notifier Notifier) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &Service{repo: r, hasher: hasher, notifier: notifier, Now: time.Now}
}

// Register creates a pending account, issues a verification token and
// queues the verification and admin-alert emails. The emails are fire
// and forget; a mail outage never rolls back the registration.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if _, err := s.repo.GetByUsername(ctx, in.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	token, err := NewVerificationToken()
	if err != nil {
		return nil, err
	}
	expires := s.Now().Add(TokenValidity)

	u := &entity.User{
		Username:            in.Username,
		Email:               in.Email,
		PasswordHash:        hash,
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		Status:              entity.StatusPending,
		VerificationToken:   &token,
		VerificationExpires: &expires,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		// lost a race with a concurrent registration; the unique index
		// picked the winner
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.notifier.SendVerification(u, token)
	s.notifier.SendAdminAlert(u)
	return u, nil
}

// VerifyEmail consumes a verification token. Expired tokens are reported
// but deliberately left in place; only a successful verify clears them.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	u, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}
	if u.VerificationExpires != nil && u.VerificationExpires.Before(s.Now()) {
		return ErrTokenExpired
	}
	ok, err := s.repo.MarkVerified(ctx, token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenNotFound
	}
	return nil
}

// ResendVerification issues a fresh token for a still-pending account,
// replacing whatever token was outstanding. Unknown emails and accounts
// past verification are silently ignored so the endpoint does not reveal
// whether an address is registered.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	if u.Status != entity.StatusPending {
		return nil
	}
	token, err := NewVerificationToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetVerificationToken(ctx, u.ID, token, s.Now().Add(TokenValidity)); err != nil {
		return err
	}
	s.notifier.SendVerification(u, token)
	return nil
}

// Authenticate checks credentials and lifecycle state. Unknown username
// and wrong password are indistinguishable to the caller. The verified /
// pending-approval distinction is reported only after the password
// matched.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if !u.Status.Verified() {
		return nil, ErrNotVerified
	}
	if !u.Status.CanLogin() {
		return nil, ErrPendingApproval
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	now := s.Now()
	u.LastLogin = &now
	return u, nil
}

// Approve moves a verified (or previously decided) account to approved
// or rejected and always queues a decision email. A still-pending account
// cannot be decided; verification comes first.
func (s *Service) Approve(ctx context.Context, id int64, approve bool) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Status == entity.StatusPending {
		return nil, ErrInvalidTransition
	}
	target := entity.StatusRejected
	if approve {
		target = entity.StatusApproved
	}
	if err := s.repo.SetStatus(ctx, u.ID, target); err != nil {
		return nil, err
	}
	u.Status = target
	s.notifier.SendDecision(u, approve)
	return u, nil
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns every account for the admin screen.
func (s *Service) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.repo.List(ctx)
}
