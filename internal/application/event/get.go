package event

import (
	"context"
	"errors"
	"strings"

	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
)

// Get returns (nil, nil) when no event has the id.
func (s *Service) Get(ctx context.Context, id string) (*domain.Event, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrValidationMeta("invalid event id", map[string]string{
			"event_id": "required",
		})
	}

	doc, err := s.store.Get(ctx, s.coll, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("event_id", id).Msg("get event failed")
		return nil, storeErr("could not load event", err)
	}

	e, err := decodeEvent(doc)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("event_id", id).Msg("malformed event record")
		return nil, err
	}
	return e, nil
}
