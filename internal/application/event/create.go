package event

import (
	"context"

	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/metrics"
)

// CreateCmd carries raw form input. Participants is text and is parsed here.
type CreateCmd struct {
	Name         string
	Description  string
	Date         string
	Participants string
}

func (s *Service) Create(ctx context.Context, cmd CreateCmd) (*domain.Event, error) {
	e, err := domain.NewDraft(cmd.Name, cmd.Description, cmd.Date, cmd.Participants)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Add(ctx, s.coll, encodeDraft(e))
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("create event failed")
		return nil, storeErr("could not create event", err)
	}
	e.ID = id

	// read back for the server-assigned createdAt
	if doc, err := s.store.Get(ctx, s.coll, id); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("event_id", id).Msg("read back after create failed")
	} else if stored, err := decodeEvent(doc); err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Str("event_id", id).Msg("read back after create failed")
	} else {
		e = stored
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock.Now().UTC()
	}

	metrics.EventsCreatedTotal.Inc()
	logger.WithCtx(ctx).Info().Str("event_id", e.ID).Msg("event created")

	publish(ctx, s, RoutingKeyCreated, EventCreatedPayload{
		EventID:      e.ID,
		Name:         e.Name,
		Date:         e.Date,
		Participants: e.Participants,
	})
	return e, nil
}
