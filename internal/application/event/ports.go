package event

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

// EventPublisher emits domain events. body is a JSON-encoded envelope.
type EventPublisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}
