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

// ConfirmAttendance appends userID to the attendees of the event. It is
// refused once the user already attends; the store does not dedupe.
func (s *Service) ConfirmAttendance(ctx context.Context, eventID, userID string) (*domain.Event, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized("missing user")
	}

	e, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound("event not found")
	}
	if !e.CanConfirm(userID) {
		return nil, domain.ErrInvalidState("attendance already confirmed")
	}

	err = s.store.Update(ctx, s.coll, eventID, docstore.Record{
		fieldAttendees: docstore.Append(userID),
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, domain.ErrNotFound("event not found")
	}
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("event_id", eventID).Msg("confirm attendance failed")
		return nil, storeErr("could not confirm attendance", err)
	}
	e.Attendees = append(e.Attendees, userID)

	metrics.AttendanceConfirmedTotal.Inc()
	publish(ctx, s, RoutingKeyAttendanceConfirmed, AttendanceConfirmedPayload{
		EventID: eventID,
		UserID:  userID,
	})
	return e, nil
}
