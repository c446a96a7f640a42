package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/baechuer/community-events/internal/docstore"
)

// Store keeps documents as JSONB rows scoped by namespace (the project id).
// Server timestamps and array appends are resolved inside postgres.
type Store struct {
	db        *sql.DB
	dsn       string
	namespace string
}

// New builds a store on db. dsn is used to open the LISTEN connection for
// Subscribe and may be empty when subscriptions are not needed.
func New(db *sql.DB, dsn, namespace string) *Store {
	return &Store{db: db, dsn: dsn, namespace: namespace}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, coll string) ([]docstore.Document, error) {
	rows, err := s.db.QueryContext(ctx, listDocsSQL, s.namespace, coll)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []docstore.Document{}
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) Add(ctx context.Context, coll string, data docstore.Record) (string, error) {
	plain, appends, timestamps := docstore.Split(data)
	for k, vals := range appends {
		plain[k] = vals
	}
	body, err := json.Marshal(plain)
	if err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	sort.Strings(timestamps)

	id := uuid.NewString()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, insertDocSQL,
			s.namespace, coll, id, string(body), pq.Array(timestamps),
		); err != nil {
			return err
		}
		return s.notify(ctx, tx, coll, id, docstore.OpAdded)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, coll, id string) (docstore.Document, error) {
	row := s.db.QueryRowContext(ctx, getDocSQL, s.namespace, coll, id)
	d, err := scanDoc(row)
	if errors.Is(err, sql.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, err
	}
	return d, nil
}

func (s *Store) Update(ctx context.Context, coll, id string, patch docstore.Record) error {
	query, args, err := s.buildUpdate(coll, id, patch)
	if err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return docstore.ErrNotFound
		}
		return s.notify(ctx, tx, coll, id, docstore.OpModified)
	})
}

// buildUpdate folds the patch into one expression over data:
// merge plain fields, then jsonb_set for each append and timestamp field.
func (s *Store) buildUpdate(coll, id string, patch docstore.Record) (string, []any, error) {
	plain, appends, timestamps := docstore.Split(patch)

	args := []any{s.namespace, coll, id}
	expr := "data"

	if len(plain) > 0 {
		b, err := json.Marshal(plain)
		if err != nil {
			return "", nil, fmt.Errorf("encode patch: %w", err)
		}
		args = append(args, string(b))
		expr = fmt.Sprintf("(%s || $%d::jsonb)", expr, len(args))
	}

	keys := make([]string, 0, len(appends))
	for k := range appends {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b, err := json.Marshal(appends[k])
		if err != nil {
			return "", nil, fmt.Errorf("encode append %q: %w", k, err)
		}
		args = append(args, k, string(b))
		key, val := len(args)-1, len(args)
		expr = fmt.Sprintf("jsonb_set(%s, ARRAY[$%d::text], COALESCE(data -> $%d::text, '[]'::jsonb) || $%d::jsonb)", expr, key, key, val)
	}

	sort.Strings(timestamps)
	for _, k := range timestamps {
		args = append(args, k)
		expr = fmt.Sprintf("jsonb_set(%s, ARRAY[$%d::text], to_jsonb(now()))", expr, len(args))
	}

	var b strings.Builder
	b.WriteString("UPDATE documents SET data = ")
	b.WriteString(expr)
	b.WriteString(", updated_at = now() WHERE namespace = $1 AND collection = $2 AND id = $3")
	return b.String(), args, nil
}

func (s *Store) Delete(ctx context.Context, coll, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, deleteDocSQL, s.namespace, coll, id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return docstore.ErrNotFound
		}
		return s.notify(ctx, tx, coll, id, docstore.OpRemoved)
	})
}

func (s *Store) Count(ctx context.Context, coll string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, countDocsSQL, s.namespace, coll).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(r rowScanner) (docstore.Document, error) {
	var (
		id  string
		raw []byte
	)
	if err := r.Scan(&id, &raw); err != nil {
		return docstore.Document{}, err
	}
	data, err := docstore.Unmarshal(raw)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Data: data}, nil
}
