package event

import (
	"context"

	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
)

// List returns every event in store order. On failure the slice is empty,
// never nil, so callers can render it directly.
func (s *Service) List(ctx context.Context) ([]*domain.Event, error) {
	docs, err := s.store.List(ctx, s.coll)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("collection", s.coll).Msg("list events failed")
		return []*domain.Event{}, storeErr("could not load events", err)
	}

	out := make([]*domain.Event, 0, len(docs))
	for _, d := range docs {
		e, err := decodeEvent(d)
		if err != nil {
			logger.WithCtx(ctx).Warn().Err(err).Str("event_id", d.ID).Msg("skipping malformed event record")
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
