package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/community-events/internal/domain"
)

// --- Fakes ---

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

type fakeAuth struct {
	signInCalls  int
	signOutCalls int
	creds        Credentials
	signInErr    error
	signOutErr   error
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (Credentials, error) {
	f.signInCalls++
	return f.creds, f.signInErr
}

func (f *fakeAuth) SignOut(ctx context.Context, accessToken string) error {
	f.signOutCalls++
	return f.signOutErr
}

type fakeVerifier struct {
	claims map[string]TokenClaims
}

func (f fakeVerifier) VerifyAccessToken(token string) (TokenClaims, error) {
	c, ok := f.claims[token]
	if !ok {
		return TokenClaims{}, errors.New("invalid")
	}
	return c, nil
}

type fakeRevocations struct {
	keys map[string]time.Duration
	err  error
}

func (f *fakeRevocations) Revoke(ctx context.Context, key string, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.keys[key] = ttl
	return nil
}

func (f *fakeRevocations) IsRevoked(ctx context.Context, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.keys[key]
	return ok, nil
}

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newGateway() (*Gateway, *fakeAuth, *fakeRevocations) {
	auth := &fakeAuth{creds: Credentials{
		UserID: "u1", Email: "a@b.c", Role: "user",
		AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 15 * time.Minute,
	}}
	verifier := fakeVerifier{claims: map[string]TokenClaims{
		"tok": {UserID: "u1", Role: "user", Exp: now.Add(15 * time.Minute)},
	}}
	rev := &fakeRevocations{keys: map[string]time.Duration{}}
	return NewGateway(auth, verifier, rev, fakeClock{t: now}), auth, rev
}

// --- Test Cases ---

func TestGateway_SignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g, _, _ := newGateway()

		s, err := g.SignIn(context.Background(), " a@b.c ", "pw")
		require.NoError(t, err)
		assert.Equal(t, domain.Identity{UserID: "u1", Email: "a@b.c", Role: "user"}, s.Identity)
		assert.Equal(t, "tok", s.AccessToken)
		assert.Equal(t, now.Add(15*time.Minute), s.ExpiresAt)
	})

	t.Run("empty_fields_rejected_without_network", func(t *testing.T) {
		g, auth, _ := newGateway()

		_, err := g.SignIn(context.Background(), "", "pw")
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
		_, err = g.SignIn(context.Background(), "a@b.c", "")
		assert.True(t, domain.IsCode(err, domain.CodeValidation))
		assert.Equal(t, 0, auth.signInCalls)
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		g, auth, _ := newGateway()
		auth.signInErr = ErrInvalidCredentials

		_, err := g.SignIn(context.Background(), "a@b.c", "bad")
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
		assert.Equal(t, 1, auth.signInCalls)
	})

	t.Run("network_failure", func(t *testing.T) {
		g, auth, _ := newGateway()
		auth.signInErr = ErrAuthUnavailable

		_, err := g.SignIn(context.Background(), "a@b.c", "pw")
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
		assert.ErrorIs(t, err, ErrAuthUnavailable)
	})
}

func TestGateway_SignOut(t *testing.T) {
	t.Run("revokes_then_signs_out_remotely", func(t *testing.T) {
		g, auth, rev := newGateway()

		require.NoError(t, g.SignOut(context.Background(), "tok"))
		assert.Equal(t, 1, auth.signOutCalls)
		assert.Equal(t, 15*time.Minute, rev.keys[tokenKey("tok")])

		_, err := g.Authenticate(context.Background(), "tok")
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
	})

	t.Run("remote_failure_keeps_local_revocation", func(t *testing.T) {
		g, auth, _ := newGateway()
		auth.signOutErr = ErrAuthUnavailable

		err := g.SignOut(context.Background(), "tok")
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))

		_, err = g.Authenticate(context.Background(), "tok")
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
	})

	t.Run("invalid_token", func(t *testing.T) {
		g, auth, _ := newGateway()

		err := g.SignOut(context.Background(), "garbage")
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
		assert.Equal(t, 0, auth.signOutCalls)
	})

	t.Run("local_failure_skips_remote", func(t *testing.T) {
		g, auth, rev := newGateway()
		rev.err = errors.New("redis down")

		err := g.SignOut(context.Background(), "tok")
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
		assert.Equal(t, 0, auth.signOutCalls)
	})
}

func TestGateway_Authenticate(t *testing.T) {
	t.Run("valid_token", func(t *testing.T) {
		g, _, _ := newGateway()

		id, err := g.Authenticate(context.Background(), "tok")
		require.NoError(t, err)
		assert.Equal(t, domain.Identity{UserID: "u1", Role: "user"}, id)
	})

	t.Run("missing_token", func(t *testing.T) {
		g, _, _ := newGateway()

		_, err := g.Authenticate(context.Background(), "")
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
	})

	t.Run("revocation_check_fails_closed", func(t *testing.T) {
		g, _, rev := newGateway()
		rev.err = errors.New("redis down")

		_, err := g.Authenticate(context.Background(), "tok")
		assert.True(t, domain.IsCode(err, domain.CodeUnavailable))
	})
}

func TestTokenKey_DoesNotLeakToken(t *testing.T) {
	k := tokenKey("secret-token")
	assert.Len(t, k, 64)
	assert.NotContains(t, k, "secret-token")
}
