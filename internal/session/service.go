package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pssiii/marketing-backend/internal/account/entity"
	"github.com/pssiii/marketing-backend/pkg/utilities"
)

var ErrInvalidSession = errors.New("invalid session")

type Config struct {
	Secret      string
	Issuer      string
	TTL         time.Duration
	RememberTTL time.Duration
}

// ConfigFromEnv reads session config from env vars.
func ConfigFromEnv() Config {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}
	ttl := 24
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			ttl = parsed
		}
	}
	remember := 24 * 30
	if v := os.Getenv("SESSION_REMEMBER_TTL_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			remember = parsed
		}
	}
	return Config{
		Secret:      secret,
		Issuer:      "marketing-backend",
		TTL:         time.Duration(ttl) * time.Hour,
		RememberTTL: time.Duration(remember) * time.Hour,
	}
}

// Identity is the per-request view of an authenticated user.
type Identity struct {
	UserID    int64
	Admin     bool
	SessionID string
}

// SessionRepository persists issued session ids so logout can revoke a
// token before its JWT expiry.
type SessionRepository interface {
	Save(ctx context.Context, id string, userID int64, expiresAt time.Time) error
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// Service issues and resolves bearer session tokens. Tokens are HS256
// JWTs whose jti is also written to the sessions table; a token is valid
// only while both the signature/expiry check and the row lookup pass.
type Service struct {
	cfg  Config
	repo SessionRepository

	Now func() time.Time
}

func NewService(cfg Config, repo SessionRepository) *Service {
	return &Service{cfg: cfg, repo: repo, Now: time.Now}
}

// Issue creates a session for the user, with the extended lifetime when
// remember is requested.
func (s *Service) Issue(ctx context.Context, u *entity.User, remember bool) (string, error) {
	ttl := s.cfg.TTL
	if remember {
		ttl = s.cfg.RememberTTL
	}
	now := s.Now()
	exp := now.Add(ttl)
	jti := utilities.NewSessionID()

	claims := jwt.MapClaims{
		"iss": s.cfg.Issuer,
		"sub": fmt.Sprintf("%d", u.ID),
		"jti": jti,
		"adm": u.IsAdmin,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", err
	}
	if err := s.repo.Save(ctx, jti, u.ID, exp); err != nil {
		return "", err
	}
	return signed, nil
}

// Resolve validates a bearer token and returns the identity it carries.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.Now() }))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return nil, ErrInvalidSession
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidSession
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		return nil, ErrInvalidSession
	}
	admin, _ := claims["adm"].(bool)

	ok, err := s.repo.Exists(ctx, jti)
	if err != nil {
		return nil, err
	}
	if !ok {
		// logged out
		return nil, ErrInvalidSession
	}
	return &Identity{UserID: userID, Admin: admin, SessionID: jti}, nil
}

// Revoke terminates a session; subsequent Resolve calls with its token
// fail even though the JWT itself has not expired.
func (s *Service) Revoke(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}
