package event

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/metrics"
)

// Confirmation is the answer to "delete this event?". The zero value cancels.
type Confirmation int

const (
	Cancel Confirmation = iota
	Confirm
)

// Delete removes the event only when confirmed. It reports whether a store
// delete happened.
func (s *Service) Delete(ctx context.Context, id string, c Confirmation) (bool, error) {
	if c != Confirm {
		return false, nil
	}
	if strings.TrimSpace(id) == "" {
		return false, domain.ErrValidationMeta("invalid event id", map[string]string{
			"event_id": "required",
		})
	}

	err := s.store.Delete(ctx, s.coll, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return false, domain.ErrNotFound("event not found")
	}
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("event_id", id).Msg("delete event failed")
		return false, storeErr("could not delete event", err)
	}

	metrics.EventsDeletedTotal.Inc()
	logger.WithCtx(ctx).Info().Str("event_id", id).Msg("event deleted")

	publish(ctx, s, RoutingKeyDeleted, EventDeletedPayload{EventID: id})
	return true, nil
}
