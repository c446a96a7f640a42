package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/baechuer/community-events/internal/docstore"
)

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
		ReadOnly:  false,
	})
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type notification struct {
	Namespace  string      `json:"ns"`
	Collection string      `json:"collection"`
	ID         string      `json:"id"`
	Op         docstore.Op `json:"op"`
}

// notify is delivered by postgres only when tx commits.
func (s *Store) notify(ctx context.Context, tx *sql.Tx, coll, id string, op docstore.Op) error {
	payload, err := json.Marshal(notification{Namespace: s.namespace, Collection: coll, ID: id, Op: op})
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, notifySQL, notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
