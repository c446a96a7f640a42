package event

import (
	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/domain"
)

const DefaultCollection = "events"

// Service is the event repository: every read and write of the events
// collection goes through it. Callers own the values it returns.
type Service struct {
	store docstore.Store
	coll  string
	pub   EventPublisher
	clock Clock
}

func New(store docstore.Store, collection string, clock Clock, pub EventPublisher) *Service {
	if collection == "" {
		collection = DefaultCollection
	}
	if pub == nil {
		pub = NoopPublisher{}
	}
	return &Service{
		store: store,
		coll:  collection,
		pub:   pub,
		clock: clock,
	}
}

func storeErr(msg string, err error) error {
	return domain.ErrUnavailable(msg, err)
}
