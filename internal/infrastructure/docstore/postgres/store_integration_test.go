//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baechuer/community-events/internal/docstore"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()

	pg, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17"),
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestStore_Postgres_EndToEnd(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	s := New(db, dsn, "proj")
	require.NoError(t, s.EnsureSchema(ctx))

	changes := make(chan docstore.Change, 16)
	sub, err := s.Subscribe(ctx, "events", func(c docstore.Change) { changes <- c })
	require.NoError(t, err)
	defer sub.Close()

	id, err := s.Add(ctx, "events", docstore.Record{
		"eventName":    "Picnic",
		"participants": 25,
		"createdAt":    docstore.ServerTimestamp(),
	})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, id, c.ID)
		assert.Equal(t, docstore.OpAdded, c.Op)
	case <-time.After(5 * time.Second):
		t.Fatal("no notification received")
	}

	require.NoError(t, s.Update(ctx, "events", id, docstore.Record{"attendees": docstore.Append("u1")}))
	require.NoError(t, s.Update(ctx, "events", id, docstore.Record{"attendees": docstore.Append("u1")}))

	doc, err := s.Get(ctx, "events", id)
	require.NoError(t, err)
	assert.Equal(t, "Picnic", doc.Data["eventName"])
	assert.Equal(t, []any{"u1", "u1"}, doc.Data["attendees"])
	_, err = time.Parse(time.RFC3339Nano, doc.Data["createdAt"].(string))
	assert.NoError(t, err)

	n, err := s.Count(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	other := New(db, dsn, "other-project")
	n, err = other.Count(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Delete(ctx, "events", id))
	_, err = s.Get(ctx, "events", id)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}
