package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/community-events/internal/docstore"
)

const subscriberBuffer = 64

type Clock interface{ Now() time.Time }

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

type collection struct {
	docs  map[string]docstore.Record
	order []string
}

// Store is an in-process document store. Data does not survive restarts.
type Store struct {
	mu    sync.RWMutex
	clock Clock
	cols  map[string]*collection

	subMu   sync.Mutex
	nextSub int
	subs    map[string]map[int]chan docstore.Change
}

func New() *Store { return NewWithClock(sysClock{}) }

func NewWithClock(clock Clock) *Store {
	return &Store{
		clock: clock,
		cols:  map[string]*collection{},
		subs:  map[string]map[int]chan docstore.Change{},
	}
}

func (s *Store) col(name string) *collection {
	c, ok := s.cols[name]
	if !ok {
		c = &collection{docs: map[string]docstore.Record{}}
		s.cols[name] = c
	}
	return c
}

func (s *Store) List(ctx context.Context, coll string) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cols[coll]
	if !ok {
		return []docstore.Document{}, nil
	}
	out := make([]docstore.Document, 0, len(c.order))
	for _, id := range c.order {
		data, err := docstore.Normalize(c.docs[id])
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Document{ID: id, Data: data})
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, coll string, data docstore.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rec, err := docstore.ApplyPatch(nil, data, s.clock.Now())
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	s.mu.Lock()
	c := s.col(coll)
	c.docs[id] = rec
	c.order = append(c.order, id)
	s.mu.Unlock()

	s.notify(docstore.Change{Collection: coll, ID: id, Op: docstore.OpAdded})
	return id, nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cols[coll]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	rec, ok := c.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	data, err := docstore.Normalize(rec)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Data: data}, nil
}

func (s *Store) Update(ctx context.Context, coll, id string, patch docstore.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	c, ok := s.cols[coll]
	if !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	cur, ok := c.docs[id]
	if !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	next, err := docstore.ApplyPatch(cur, patch, s.clock.Now())
	if err != nil {
		s.mu.Unlock()
		return err
	}
	c.docs[id] = next
	s.mu.Unlock()

	s.notify(docstore.Change{Collection: coll, ID: id, Op: docstore.OpModified})
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	c, ok := s.cols[coll]
	if !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.notify(docstore.Change{Collection: coll, ID: id, Op: docstore.OpRemoved})
	return nil
}

func (s *Store) Count(ctx context.Context, coll string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cols[coll]
	if !ok {
		return 0, nil
	}
	return len(c.docs), nil
}

func (s *Store) Subscribe(ctx context.Context, coll string, onChange func(docstore.Change)) (docstore.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := make(chan docstore.Change, subscriberBuffer)

	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[coll] == nil {
		s.subs[coll] = map[int]chan docstore.Change{}
	}
	s.subs[coll][id] = ch
	s.subMu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	// the goroutine owns deregistration, so a cancelled ctx releases the
	// subscription as fully as Close does
	go func() {
		defer close(done)
		defer s.unsubscribe(coll, id)
		for {
			select {
			case <-ctx.Done():
				return
			case c := <-ch:
				onChange(c)
			}
		}
	}()

	return docstore.CloseFunc(func() error {
		cancel()
		<-done
		return nil
	}), nil
}

func (s *Store) unsubscribe(coll string, id int) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	delete(s.subs[coll], id)
	if len(s.subs[coll]) == 0 {
		delete(s.subs, coll)
	}
}

// subscribers reports how many subscriptions are registered for coll.
func (s *Store) subscribers(coll string) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs[coll])
}

func (s *Store) notify(c docstore.Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs[c.Collection] {
		select {
		case ch <- c:
		default:
			zlog.Warn().Str("collection", c.Collection).Str("id", c.ID).Msg("docstore subscriber lagging, change dropped")
		}
	}
}
