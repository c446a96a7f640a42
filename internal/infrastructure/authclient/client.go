// Package authclient talks to the external authentication service over HTTP.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/baechuer/community-events/internal/application/session"
	"github.com/baechuer/community-events/internal/logger"
	appCtx "github.com/baechuer/community-events/internal/pkg/context"
)

const (
	loginPath  = "/auth/v1/login"
	logoutPath = "/auth/v1/logout"

	HeaderAPIKey    = "X-Api-Key"
	HeaderRequestID = "X-Request-Id"
)

var ErrTimeout = errors.New("auth_service_timeout")

type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("auth service error [%d] %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New builds a client. timeout bounds every call; there are no retries.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type dataEnvelope[T any] struct {
	Data T `json:"data"`
}

type authData struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Tokens struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"` // seconds
	} `json:"tokens"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) SignIn(ctx context.Context, email, password string) (session.Credentials, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return session.Credentials{}, err
	}

	resp, err := c.do(ctx, http.MethodPost, loginPath, body, "")
	if err != nil {
		return session.Credentials{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		serr := decodeError(resp)
		if isInvalidCredentials(serr) {
			return session.Credentials{}, session.ErrInvalidCredentials
		}
		return session.Credentials{}, fmt.Errorf("%w: %w", session.ErrAuthUnavailable, serr)
	}

	var env dataEnvelope[authData]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return session.Credentials{}, fmt.Errorf("%w: decode login response: %w", session.ErrAuthUnavailable, err)
	}
	d := env.Data
	if d.Tokens.AccessToken == "" || d.User.ID == "" {
		return session.Credentials{}, fmt.Errorf("%w: incomplete login response", session.ErrAuthUnavailable)
	}

	tokenType := d.Tokens.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return session.Credentials{
		UserID:      d.User.ID,
		Email:       d.User.Email,
		Role:        d.User.Role,
		AccessToken: d.Tokens.AccessToken,
		TokenType:   tokenType,
		ExpiresIn:   time.Duration(d.Tokens.ExpiresIn) * time.Second,
	}, nil
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, logoutPath, nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %w", session.ErrAuthUnavailable, decodeError(resp))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, bearer string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(HeaderAPIKey, c.apiKey)
	}
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		req.Header.Set(HeaderRequestID, reqID)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	log := logger.WithCtx(ctx).With().
		Str("method", method).
		Str("path", path).
		Logger()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn().Err(err).Dur("duration", time.Since(start)).Msg("auth_request_failed")
		return nil, mapError(err)
	}
	log.Debug().Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("auth_request_completed")
	return resp, nil
}

// mapError converts transport errors into session.ErrAuthUnavailable.
func mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: %w", session.ErrAuthUnavailable, ErrTimeout)
	}
	return fmt.Errorf("%w: %w", session.ErrAuthUnavailable, err)
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func decodeError(resp *http.Response) *StatusError {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Code != "" {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Code:       apiErr.Error.Code,
			Message:    apiErr.Error.Message,
		}
	}
	return &StatusError{
		StatusCode: resp.StatusCode,
		Code:       "auth_error",
		Message:    fmt.Sprintf("unexpected status: %d", resp.StatusCode),
	}
}

func isInvalidCredentials(e *StatusError) bool {
	switch e.Code {
	case "invalid_credentials", "unauthorized":
		return true
	}
	return e.StatusCode == http.StatusUnauthorized
}
