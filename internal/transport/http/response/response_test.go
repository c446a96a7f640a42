package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/community-events/internal/domain"
	appCtx "github.com/baechuer/community-events/internal/pkg/context"
)

func TestErr(t *testing.T) {
	t.Run("maps_domain_error_to_correct_status", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
			wantCode   string
		}{
			{"not_found", domain.ErrNotFound("event missing"), http.StatusNotFound, "not_found"},
			{"validation", domain.ErrValidation("invalid name"), http.StatusBadRequest, "validation_error"},
			{"unauthorized", domain.ErrUnauthorized("no"), http.StatusUnauthorized, "unauthorized"},
			{"forbidden", domain.ErrForbidden("no access"), http.StatusForbidden, "forbidden"},
			{"invalid_state", domain.ErrInvalidState("already"), http.StatusConflict, "invalid_state"},
			{"unavailable", domain.ErrUnavailable("down", errors.New("dial")), http.StatusServiceUnavailable, "unavailable"},
			{"generic_error", errors.New("db crash"), http.StatusInternalServerError, "internal_error"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rr := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
				req = req.WithContext(appCtx.WithRequestID(req.Context(), "req-1"))
				Err(rr, req, tt.err)

				assert.Equal(t, tt.wantStatus, rr.Code)

				var body ErrorBody
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, tt.wantCode, body.Error.Code)
				assert.Equal(t, "req-1", body.Error.RequestID)
			})
		}
	})

	t.Run("internal_error_hides_details", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		Err(rr, req, errors.New("password=hunter2"))

		assert.NotContains(t, rr.Body.String(), "hunter2")
	})
}

func TestData(t *testing.T) {
	t.Run("wraps_payload_in_data_envelope", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		Data(rr, req, http.StatusCreated, map[string]string{"id": "123"})

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

		var env Envelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		dataMap := env.Data.(map[string]any)
		assert.Equal(t, "123", dataMap["id"])
	})

	t.Run("nil_payload_is_null", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		Data(rr, req, http.StatusOK, nil)

		assert.JSONEq(t, `{"data":null}`, rr.Body.String())
	})
}
