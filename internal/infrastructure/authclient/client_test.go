package authclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/community-events/internal/application/session"
	appCtx "github.com/baechuer/community-events/internal/pkg/context"
)

func TestClient_SignIn(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, loginPath, r.URL.Path)
			assert.Equal(t, "key-1", r.Header.Get(HeaderAPIKey))
			assert.Equal(t, "req-1", r.Header.Get(HeaderRequestID))

			var body loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "a@b.c", body.Email)
			assert.Equal(t, "pw", body.Password)

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{
				"user":{"id":"u1","email":"a@b.c","role":"user"},
				"tokens":{"access_token":"tok","token_type":"Bearer","expires_in":900}
			}}`))
		}))
		defer srv.Close()

		c := New(srv.URL+"/", "key-1", time.Second)
		ctx := appCtx.WithRequestID(context.Background(), "req-1")

		creds, err := c.SignIn(ctx, "a@b.c", "pw")
		require.NoError(t, err)
		assert.Equal(t, session.Credentials{
			UserID:      "u1",
			Email:       "a@b.c",
			Role:        "user",
			AccessToken: "tok",
			TokenType:   "Bearer",
			ExpiresIn:   15 * time.Minute,
		}, creds)
	})

	t.Run("invalid_credentials", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"invalid_credentials","message":"invalid email or password"}}`))
		}))
		defer srv.Close()

		_, err := New(srv.URL, "", time.Second).SignIn(context.Background(), "a@b.c", "bad")
		assert.ErrorIs(t, err, session.ErrInvalidCredentials)
	})

	t.Run("server_error_is_unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := New(srv.URL, "", time.Second).SignIn(context.Background(), "a@b.c", "pw")
		assert.ErrorIs(t, err, session.ErrAuthUnavailable)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	})

	t.Run("timeout_is_unavailable", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		_, err := New(srv.URL, "", 50*time.Millisecond).SignIn(context.Background(), "a@b.c", "pw")
		assert.ErrorIs(t, err, session.ErrAuthUnavailable)
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("unreachable_is_unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, "", time.Second).SignIn(context.Background(), "a@b.c", "pw")
		assert.ErrorIs(t, err, session.ErrAuthUnavailable)
	})
}

func TestClient_SignOut(t *testing.T) {
	t.Run("sends_bearer", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, logoutPath, r.URL.Path)
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		assert.NoError(t, New(srv.URL, "", time.Second).SignOut(context.Background(), "tok"))
	})

	t.Run("failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		err := New(srv.URL, "", time.Second).SignOut(context.Background(), "tok")
		assert.ErrorIs(t, err, session.ErrAuthUnavailable)
	})
}
