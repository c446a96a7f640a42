package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/baechuer/community-events/internal/domain"
	appCtx "github.com/baechuer/community-events/internal/pkg/context"
	"github.com/baechuer/community-events/internal/transport/http/response"
)

type ctxKey string

const (
	ctxIdentity ctxKey = "identity"
	ctxToken    ctxKey = "access_token"
)

// Authenticator resolves a bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (domain.Identity, error)
}

type AuthMiddleware struct {
	authn Authenticator
}

func NewAuth(authn Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authn: authn}
}

func (a *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearer(r)
		if !ok {
			response.Err(w, r, domain.ErrUnauthorized("missing bearer token"))
			return
		}

		id, err := a.authn.Authenticate(r.Context(), raw)
		if err != nil {
			response.Err(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxIdentity, id)
		ctx = context.WithValue(ctx, ctxToken, raw)
		ctx = appCtx.WithUserID(ctx, id.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearer(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return raw, raw != ""
}

func Identity(r *http.Request) domain.Identity {
	if v, ok := r.Context().Value(ctxIdentity).(domain.Identity); ok {
		return v
	}
	return domain.Identity{}
}

func UserID(r *http.Request) string {
	return Identity(r).UserID
}

// AccessToken is the raw bearer token of an authenticated request.
func AccessToken(r *http.Request) string {
	if v, ok := r.Context().Value(ctxToken).(string); ok {
		return v
	}
	return ""
}
