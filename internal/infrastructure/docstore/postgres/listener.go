package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/community-events/internal/docstore"
)

const (
	listenerMinReconnect = 100 * time.Millisecond
	listenerMaxReconnect = 10 * time.Second
	listenerPingInterval = 90 * time.Second
)

// Subscribe opens a dedicated LISTEN connection. Notifications from other
// namespaces or collections are filtered out. After a reconnect a resync
// change is delivered since notifications may have been missed.
func (s *Store) Subscribe(ctx context.Context, coll string, onChange func(docstore.Change)) (docstore.Subscription, error) {
	if s.dsn == "" {
		return nil, errors.New("postgres docstore: subscribe requires a dsn")
	}

	reconnected := make(chan struct{}, 1)
	l := pq.NewListener(s.dsn, listenerMinReconnect, listenerMaxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			zlog.Warn().Err(err).Int("event", int(ev)).Msg("docstore listener event")
		}
		if ev == pq.ListenerEventReconnected {
			select {
			case reconnected <- struct{}{}:
			default:
			}
		}
	})
	if err := l.Listen(notifyChannel); err != nil {
		_ = l.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var closeErr error
	go func() {
		defer close(done)
		defer func() { closeErr = l.Close() }()
		ping := time.NewTicker(listenerPingInterval)
		defer ping.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-reconnected:
				onChange(docstore.Change{Collection: coll, Op: docstore.OpResync})
			case n := <-l.Notify:
				if n == nil {
					continue
				}
				var msg notification
				if err := json.Unmarshal([]byte(n.Extra), &msg); err != nil {
					zlog.Warn().Err(err).Msg("docstore notification decode failed")
					continue
				}
				if msg.Namespace != s.namespace || msg.Collection != coll {
					continue
				}
				onChange(docstore.Change{Collection: msg.Collection, ID: msg.ID, Op: msg.Op})
			case <-ping.C:
				go func() { _ = l.Ping() }()
			}
		}
	}()

	return docstore.CloseFunc(func() error {
		cancel()
		<-done
		return closeErr
	}), nil
}
