package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time { return c.t }

func TestRevocationStore(t *testing.T) {
	ctx := context.Background()
	clock := &stepClock{t: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)}
	s := NewRevocationStore(clock)

	require.NoError(t, s.Revoke(ctx, "k1", time.Minute))

	revoked, err := s.IsRevoked(ctx, "k1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, revoked)

	clock.t = clock.t.Add(2 * time.Minute)
	revoked, err = s.IsRevoked(ctx, "k1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
