package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"bookshelf/internal/platform/crypto"
	"bookshelf/internal/user"
)

// ErrInvalidCredentials covers unknown users, wrong passwords and inactive accounts alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserFinder interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

// Revoker invalidates a session token before it expires.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

// Session is an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	secret  string
	ttl     time.Duration
	users   UserFinder
	revoker Revoker
}

// NewService builds the login service. revoker may be nil, in which case
// logout only clears the cookie and the token stays valid until it expires.
func NewService(secret string, ttl time.Duration, users UserFinder, revoker Revoker) *Service {
	return &Service{
		secret:  secret,
		ttl:     ttl,
		users:   users,
		revoker: revoker,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same bcrypt time as a real comparison so
// unknown usernames cannot be told apart by latency.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = crypto.HashPassword("bookshelf-dummy-password")
	})
	crypto.VerifyPassword(dummyHash, password)
}

func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	if username == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			burnPasswordCheck(password)
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !crypto.VerifyPassword(u.PasswordHash, password) || !u.IsActive {
		return Session{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.ttl)
	token, _, err := crypto.GenerateToken(s.secret, u.ID, u.Username, s.ttl)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes token. Tokens that no longer verify are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" || s.revoker == nil {
		return nil
	}
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return nil
	}

	expiresAt := time.Now().Add(s.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, expiresAt)
}
