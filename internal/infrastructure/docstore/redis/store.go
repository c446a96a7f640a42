package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/community-events/internal/docstore"
)

const maxTxRetries = 3

// Store keeps each document as a JSON string and the collection order in a
// sorted set scored by an insertion sequence. Changes are published on a
// per-collection channel.
type Store struct {
	rdb       *redis.Client
	namespace string
}

func New(rdb *redis.Client, namespace string) *Store {
	return &Store{rdb: rdb, namespace: namespace}
}

func (s *Store) docKey(coll, id string) string {
	return fmt.Sprintf("%s:%s:doc:%s", s.namespace, coll, id)
}
func (s *Store) idsKey(coll string) string     { return fmt.Sprintf("%s:%s:ids", s.namespace, coll) }
func (s *Store) seqKey(coll string) string     { return fmt.Sprintf("%s:%s:seq", s.namespace, coll) }
func (s *Store) channelKey(coll string) string { return fmt.Sprintf("%s:%s:changes", s.namespace, coll) }

func (s *Store) List(ctx context.Context, coll string) ([]docstore.Document, error) {
	ids, err := s.rdb.ZRange(ctx, s.idsKey(coll), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]docstore.Document, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(coll, id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// removed between ZRANGE and MGET
			continue
		}
		data, err := docstore.Unmarshal([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, docstore.Document{ID: ids[i], Data: data})
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, coll string, data docstore.Record) (string, error) {
	now, err := s.rdb.Time(ctx).Result()
	if err != nil {
		return "", err
	}
	rec, err := docstore.ApplyPatch(nil, data, now)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}

	seq, err := s.rdb.Incr(ctx, s.seqKey(coll)).Result()
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.docKey(coll, id), body, 0)
		p.ZAdd(ctx, s.idsKey(coll), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return "", err
	}
	s.publish(ctx, docstore.Change{Collection: coll, ID: id, Op: docstore.OpAdded})
	return id, nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	raw, err := s.rdb.Get(ctx, s.docKey(coll, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, err
	}
	data, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Data: data}, nil
}

// Update applies the patch under WATCH so concurrent appends are not lost.
func (s *Store) Update(ctx context.Context, coll, id string, patch docstore.Record) error {
	key := s.docKey(coll, id)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return docstore.ErrNotFound
		}
		if err != nil {
			return err
		}
		cur, err := docstore.Unmarshal(raw)
		if err != nil {
			return err
		}
		now, err := tx.Time(ctx).Result()
		if err != nil {
			return err
		}
		next, err := docstore.ApplyPatch(cur, patch, now)
		if err != nil {
			return err
		}
		body, err := json.Marshal(next)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, body, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		break
	}
	if err != nil {
		return err
	}
	s.publish(ctx, docstore.Change{Collection: coll, ID: id, Op: docstore.OpModified})
	return nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, s.docKey(coll, id))
		p.ZRem(ctx, s.idsKey(coll), id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return docstore.ErrNotFound
	}
	s.publish(ctx, docstore.Change{Collection: coll, ID: id, Op: docstore.OpRemoved})
	return nil
}

func (s *Store) Count(ctx context.Context, coll string) (int, error) {
	n, err := s.rdb.ZCard(ctx, s.idsKey(coll)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// publish is best effort; the write already happened.
func (s *Store) publish(ctx context.Context, c docstore.Change) {
	body, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, s.channelKey(c.Collection), body).Err(); err != nil {
		zlog.Warn().Err(err).Str("collection", c.Collection).Str("id", c.ID).Msg("docstore change publish failed")
	}
}

func (s *Store) Subscribe(ctx context.Context, coll string, onChange func(docstore.Change)) (docstore.Subscription, error) {
	ps := s.rdb.Subscribe(ctx, s.channelKey(coll))

	// wait for the subscription to be confirmed so no change is missed
	// between Subscribe returning and the first publish
	rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
	defer rcancel()
	if _, err := ps.Receive(rctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	msgs := ps.Channel()

	var closeErr error
	go func() {
		defer close(done)
		defer func() { closeErr = ps.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var c docstore.Change
				if err := json.Unmarshal([]byte(m.Payload), &c); err != nil {
					zlog.Warn().Err(err).Str("channel", m.Channel).Msg("docstore change decode failed")
					continue
				}
				onChange(c)
			}
		}
	}()

	return docstore.CloseFunc(func() error {
		cancel()
		<-done
		return closeErr
	}), nil
}
