package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/community-events/internal/docstore"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, "", "proj"), mock
}

func TestStore_Add(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").
		WithArgs("proj", "events", sqlmock.AnyArg(), `{"eventName":"Picnic"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SELECT pg_notify").
		WithArgs(notifyChannel, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := s.Add(context.Background(), "events", docstore.Record{
		"eventName": "Picnic",
		"createdAt": docstore.ServerTimestamp(),
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Add_RollsBackOnInsertError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO documents").WillReturnError(errors.New("db down"))
	mock.ExpectRollback()

	_, err := s.Add(context.Background(), "events", docstore.Record{"eventName": "Picnic"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Get(t *testing.T) {
	s, mock := newMockStore(t)

	t.Run("success_mapping", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "data"}).
			AddRow("doc-1", []byte(`{"eventName":"Picnic","participants":25}`))
		mock.ExpectQuery("SELECT id, data FROM documents").
			WithArgs("proj", "events", "doc-1").
			WillReturnRows(rows)

		doc, err := s.Get(context.Background(), "events", "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "doc-1", doc.ID)
		assert.Equal(t, "Picnic", doc.Data["eventName"])
		assert.Equal(t, float64(25), doc.Data["participants"])
	})

	t.Run("not_found_mapping", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, data FROM documents").
			WithArgs("proj", "events", "none").
			WillReturnRows(sqlmock.NewRows([]string{"id", "data"}))

		_, err := s.Get(context.Background(), "events", "none")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_List(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"id", "data"}).
		AddRow("a", []byte(`{"eventName":"A"}`)).
		AddRow("b", []byte(`{"eventName":"B"}`))
	mock.ExpectQuery("SELECT id, data FROM documents").
		WithArgs("proj", "events").
		WillReturnRows(rows)

	docs, err := s.List(context.Background(), "events")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "B", docs[1].Data["eventName"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_BuildUpdate(t *testing.T) {
	s := New(nil, "", "proj")

	query, args, err := s.buildUpdate("events", "doc-1", docstore.Record{
		"description": "x",
		"attendees":   docstore.Append("u1"),
		"updatedAt":   docstore.ServerTimestamp(),
	})
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE documents SET data = "+
			"jsonb_set(jsonb_set((data || $4::jsonb), ARRAY[$5::text], COALESCE(data -> $5::text, '[]'::jsonb) || $6::jsonb), ARRAY[$7::text], to_jsonb(now()))"+
			", updated_at = now() WHERE namespace = $1 AND collection = $2 AND id = $3",
		query)
	assert.Equal(t, []any{"proj", "events", "doc-1", `{"description":"x"}`, "attendees", `["u1"]`, "updatedAt"}, args)
}

func TestStore_Update(t *testing.T) {
	t.Run("appends_and_notifies", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE documents SET data").
			WithArgs("proj", "events", "doc-1", "comments", `[{"comment":"nice","rating":5,"userId":"u1"}]`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("SELECT pg_notify").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := s.Update(context.Background(), "events", "doc-1", docstore.Record{
			"comments": docstore.Append(map[string]any{"userId": "u1", "comment": "nice", "rating": 5}),
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row_is_not_found", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE documents SET data").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := s.Update(context.Background(), "events", "gone", docstore.Record{"attendees": docstore.Append("u1")})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("deletes_and_notifies", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM documents").
			WithArgs("proj", "events", "doc-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("SELECT pg_notify").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, s.Delete(context.Background(), "events", "doc-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing_row_is_not_found", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM documents").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		assert.ErrorIs(t, s.Delete(context.Background(), "events", "gone"), docstore.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_Count(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("SELECT count").
		WithArgs("proj", "events").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := s.Count(context.Background(), "events")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Subscribe_RequiresDSN(t *testing.T) {
	s, _ := newMockStore(t)
	_, err := s.Subscribe(context.Background(), "events", func(docstore.Change) {})
	assert.Error(t, err)
}
