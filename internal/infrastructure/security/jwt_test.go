package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_VerifyAccessToken(t *testing.T) {
	j := NewJWT("test-secret", "test-issuer")

	t.Run("valid_token", func(t *testing.T) {
		tok, err := j.SignAccessToken("user-123", "admin", time.Hour)
		require.NoError(t, err)

		claims, err := j.VerifyAccessToken(tok)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "admin", claims.Role)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.Exp, 2*time.Second)
	})

	t.Run("expired_token", func(t *testing.T) {
		tok, err := j.SignAccessToken("user-1", "user", -time.Hour)
		require.NoError(t, err)

		_, err = j.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		tok, err := NewJWT("other-secret", "test-issuer").SignAccessToken("user-1", "user", time.Hour)
		require.NoError(t, err)

		_, err = j.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		tok, err := NewJWT("test-secret", "someone-else").SignAccessToken("user-1", "user", time.Hour)
		require.NoError(t, err)

		_, err = j.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("alg_none_rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"uid": "user-1",
			"iss": "test-issuer",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = j.VerifyAccessToken(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}
