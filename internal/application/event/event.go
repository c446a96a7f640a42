package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/metrics"
	appCtx "github.com/baechuer/community-events/internal/pkg/context"
)

const (
	EventVersion  = 1
	EventProducer = "community-events"

	RoutingKeyCreated             = "event.created"
	RoutingKeyDeleted             = "event.deleted"
	RoutingKeyCommented           = "event.commented"
	RoutingKeyAttendanceConfirmed = "event.attendance_confirmed"
)

// DomainEventEnvelope is the stable contract for all domain events emitted by this service.
// Consumers should rely on: version/producer/message_id/occurred_at + payload.
type DomainEventEnvelope[T any] struct {
	Version    int       `json:"version"`
	Producer   string    `json:"producer"`
	MessageID  string    `json:"message_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    T         `json:"payload"`
}

// EventCreatedPayload is the business payload for routing key: event.created
type EventCreatedPayload struct {
	EventID      string `json:"event_id"`
	Name         string `json:"name"`
	Date         string `json:"date"`
	Participants int    `json:"participants"`
}

// EventDeletedPayload is the business payload for routing key: event.deleted
type EventDeletedPayload struct {
	EventID string `json:"event_id"`
}

// EventCommentedPayload is the business payload for routing key: event.commented
type EventCommentedPayload struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
	Rating  int    `json:"rating"`
}

// AttendanceConfirmedPayload is the business payload for routing key: event.attendance_confirmed
type AttendanceConfirmedPayload struct {
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// publish never fails the calling operation; the write already happened.
func publish[T any](ctx context.Context, s *Service, routingKey string, payload T) {
	env := DomainEventEnvelope[T]{
		Version:    EventVersion,
		Producer:   EventProducer,
		MessageID:  uuid.NewString(),
		TraceID:    appCtx.GetRequestID(ctx),
		OccurredAt: s.clock.Now().UTC(),
		Payload:    payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Str("routing_key", routingKey).Msg("domain event encode failed")
		return
	}
	if err := s.pub.PublishEvent(ctx, routingKey, env.MessageID, body); err != nil {
		metrics.DomainEventPublishFailures.WithLabelValues(routingKey).Inc()
		logger.WithCtx(ctx).Warn().Err(err).
			Str("routing_key", routingKey).
			Str("message_id", env.MessageID).
			Msg("domain event publish failed")
	}
}
