package event

import (
	"context"
	"sync"

	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/metrics"
)

func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx, s.coll)
	if err != nil {
		logger.WithCtx(ctx).Error().Err(err).Msg("count events failed")
		return 0, storeErr("could not count events", err)
	}
	return n, nil
}

// CountSubscription is the release handle of WatchCount.
type CountSubscription struct {
	sub  docstore.Subscription
	stop func() bool
	once sync.Once
	err  error
}

// Close stops delivery. Safe to call more than once; must not be called from
// inside the onCount callback.
func (c *CountSubscription) Close() error {
	if c.stop != nil {
		c.stop()
	}
	c.release()
	return c.err
}

func (c *CountSubscription) release() {
	c.once.Do(func() {
		c.err = c.sub.Close()
		metrics.LiveCountSubscribers.Dec()
	})
}

// WatchCount delivers the current number of events immediately and again after
// every change to the collection, until the handle is closed or ctx ends.
// Calls to onCount never overlap.
func (s *Service) WatchCount(ctx context.Context, onCount func(int)) (*CountSubscription, error) {
	var mu sync.Mutex
	emit := func() {
		mu.Lock()
		defer mu.Unlock()
		n, err := s.store.Count(ctx, s.coll)
		if err != nil {
			if ctx.Err() == nil {
				logger.WithCtx(ctx).Warn().Err(err).Msg("live count refresh failed")
			}
			return
		}
		onCount(n)
	}

	// hold delivery until the initial count is out so it cannot arrive last
	mu.Lock()
	sub, err := s.store.Subscribe(ctx, s.coll, func(docstore.Change) { emit() })
	if err != nil {
		mu.Unlock()
		logger.WithCtx(ctx).Error().Err(err).Msg("live count subscribe failed")
		return nil, storeErr("could not subscribe to events", err)
	}
	n, err := s.store.Count(ctx, s.coll)
	if err != nil {
		mu.Unlock()
		_ = sub.Close()
		return nil, storeErr("could not count events", err)
	}
	onCount(n)
	mu.Unlock()

	metrics.LiveCountSubscribers.Inc()
	cs := &CountSubscription{sub: sub}
	// a cancelled ctx releases the handle even if Close is never called
	cs.stop = context.AfterFunc(ctx, cs.release)
	return cs, nil
}
