package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
	appCtx "github.com/baechuer/community-events/internal/pkg/context"
)

// Envelope is the success envelope:
// {"data": ...}
// data is always present; an absent resource is encoded as null.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody matches auth-service style:
// {"error":{"code":"...","message":"...","meta":{...},"request_id":"..."}}
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Meta      map[string]string `json:"meta,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// JSON writes v with status through render.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Data wraps payload with {"data": ...}
func Data(w http.ResponseWriter, r *http.Request, status int, payload any) {
	JSON(w, r, status, Envelope{Data: payload})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes error body:
// {"error":{"code":"...","message":"...","meta":{...},"request_id":"..."}}
func Fail(w http.ResponseWriter, r *http.Request, status int, code, message string, meta map[string]string) {
	JSON(w, r, status, ErrorBody{
		Error: ErrorPayload{
			Code:      code,
			Message:   message,
			Meta:      meta,
			RequestID: appCtx.GetRequestID(r.Context()),
		},
	})
}

func Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		Fail(w, r, http.StatusInternalServerError, "internal_error", "unknown error", nil)
		return
	}

	var ae *domain.AppError
	if errors.As(err, &ae) {
		if ae.Cause != nil {
			logger.WithCtx(r.Context()).Warn().Err(ae.Cause).Str("code", string(ae.Code)).Msg(ae.Message)
		}
		Fail(w, r, statusFromCode(ae.Code), string(ae.Code), ae.Message, ae.Meta)
		return
	}

	// keep details in logs only
	logger.WithCtx(r.Context()).Error().Err(err).Msg("unhandled error")
	Fail(w, r, http.StatusInternalServerError, "internal_error", "internal error", nil)
}

func statusFromCode(code domain.ErrCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidState:
		return http.StatusConflict
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
