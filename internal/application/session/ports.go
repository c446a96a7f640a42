package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials is returned by AuthService when the email/password pair is rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthUnavailable wraps transport failures talking to the auth service.
	ErrAuthUnavailable = errors.New("auth service unavailable")
)

type Clock interface {
	Now() time.Time
}

// Credentials is what the external auth service hands back on sign-in.
type Credentials struct {
	UserID      string
	Email       string
	Role        string
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (Credentials, error)
	SignOut(ctx context.Context, accessToken string) error
}

type TokenClaims struct {
	UserID string
	Role   string
	Exp    time.Time
}

type TokenVerifier interface {
	VerifyAccessToken(token string) (TokenClaims, error)
}

// RevocationStore remembers signed-out tokens until they expire on their own.
type RevocationStore interface {
	Revoke(ctx context.Context, key string, ttl time.Duration) error
	IsRevoked(ctx context.Context, key string) (bool, error)
}
