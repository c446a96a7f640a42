package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/metrics"
)

// minRevocationTTL keeps tokens that are about to expire revoked through the
// verifier's clock leeway.
const minRevocationTTL = time.Minute

type Session struct {
	Identity    domain.Identity
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Gateway is the single entry point for authentication. It is constructed
// once and passed to whoever needs it.
type Gateway struct {
	auth     AuthService
	verifier TokenVerifier
	revoked  RevocationStore
	clock    Clock
}

func NewGateway(auth AuthService, verifier TokenVerifier, revoked RevocationStore, clock Clock) *Gateway {
	return &Gateway{
		auth:     auth,
		verifier: verifier,
		revoked:  revoked,
		clock:    clock,
	}
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(email)
	meta := map[string]string{}
	if email == "" {
		meta["email"] = "required"
	}
	if password == "" {
		meta["password"] = "required"
	}
	if len(meta) > 0 {
		metrics.SignInTotal.WithLabelValues("validation").Inc()
		return nil, domain.ErrValidationMeta("email and password are required", meta)
	}

	creds, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			metrics.SignInTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, domain.ErrUnauthorized("invalid email or password")
		default:
			metrics.SignInTotal.WithLabelValues("unavailable").Inc()
			logger.WithCtx(ctx).Error().Err(err).Msg("sign in failed")
			return nil, domain.ErrUnavailable("sign in failed, try again later", err)
		}
	}

	metrics.SignInTotal.WithLabelValues("success").Inc()
	logger.WithCtx(ctx).Info().Str("user_id", creds.UserID).Msg("signed in")

	return &Session{
		Identity: domain.Identity{
			UserID: creds.UserID,
			Email:  creds.Email,
			Role:   creds.Role,
		},
		AccessToken: creds.AccessToken,
		TokenType:   creds.TokenType,
		ExpiresAt:   g.clock.Now().Add(creds.ExpiresIn).UTC(),
	}, nil
}

// SignOut revokes the token locally, then tells the auth service. A failing
// remote call is returned but the local revocation is kept.
func (g *Gateway) SignOut(ctx context.Context, accessToken string) error {
	claims, err := g.verifier.VerifyAccessToken(accessToken)
	if err != nil {
		return domain.ErrUnauthorized("invalid session")
	}

	ttl := claims.Exp.Sub(g.clock.Now())
	if ttl < minRevocationTTL {
		ttl = minRevocationTTL
	}
	if err := g.revoked.Revoke(ctx, tokenKey(accessToken), ttl); err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("user_id", claims.UserID).Msg("local revocation failed")
		return domain.ErrUnavailable("sign out failed, try again later", err)
	}

	if err := g.auth.SignOut(ctx, accessToken); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("user_id", claims.UserID).Msg("remote sign out failed")
		return domain.ErrUnavailable("signed out locally, remote sign out failed", err)
	}

	logger.WithCtx(ctx).Info().Str("user_id", claims.UserID).Msg("signed out")
	return nil
}

// Authenticate resolves the identity behind an access token. Revoked tokens
// are rejected; if revocation cannot be checked the token is rejected too.
func (g *Gateway) Authenticate(ctx context.Context, accessToken string) (domain.Identity, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return domain.Identity{}, domain.ErrUnauthorized("missing bearer token")
	}
	claims, err := g.verifier.VerifyAccessToken(accessToken)
	if err != nil {
		return domain.Identity{}, domain.ErrUnauthorized("invalid token")
	}
	if strings.TrimSpace(claims.UserID) == "" {
		return domain.Identity{}, domain.ErrUnauthorized("missing uid")
	}

	revoked, err := g.revoked.IsRevoked(ctx, tokenKey(accessToken))
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("revocation check failed")
		return domain.Identity{}, domain.ErrUnavailable("could not verify session", err)
	}
	if revoked {
		return domain.Identity{}, domain.ErrUnauthorized("session signed out")
	}

	role := strings.TrimSpace(claims.Role)
	if role == "" {
		role = "user"
	}
	return domain.Identity{UserID: claims.UserID, Role: role}, nil
}

// tokenKey keeps raw tokens out of the revocation store.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
