package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValues(t *testing.T) {
	t.Run("empty_context", func(t *testing.T) {
		assert.Empty(t, GetRequestID(context.Background()))
		assert.Empty(t, GetUserID(context.Background()))
	})

	t.Run("keys_do_not_collide", func(t *testing.T) {
		ctx := WithUserID(WithRequestID(context.Background(), "req-1"), "user-ann")
		assert.Equal(t, "req-1", GetRequestID(ctx))
		assert.Equal(t, "user-ann", GetUserID(ctx))

		// a plain string key with the same text is a different key
		ctx = context.WithValue(context.Background(), "request_id", "spoofed")
		assert.Empty(t, GetRequestID(ctx))
	})
}
