package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/community-events/internal/application/event"
	"github.com/baechuer/community-events/internal/application/session"
	"github.com/baechuer/community-events/internal/domain"
	docmem "github.com/baechuer/community-events/internal/infrastructure/docstore/memory"
	"github.com/baechuer/community-events/internal/infrastructure/memory"
	"github.com/baechuer/community-events/internal/infrastructure/security"
)

func newCountConsole(t *testing.T, input string) (*Console, *event.Service, *stubAuth, *bytes.Buffer) {
	t.Helper()
	auth := &stubAuth{jwt: security.NewJWT("secret", "")}
	gw := session.NewGateway(auth, auth.jwt, memory.NewRevocationStore(realClock{}), realClock{})
	svc := event.New(docmem.New(), "events", realClock{}, event.NoopPublisher{})
	_, err := svc.Create(context.Background(), event.CreateCmd{
		Name: "Picnic", Description: "Bring food", Date: "2025-06-01", Participants: "25",
	})
	require.NoError(t, err)

	prompts := &bytes.Buffer{}
	return New(gw, svc, strings.NewReader(input), prompts), svc, auth, prompts
}

func TestConsole_PrintCount(t *testing.T) {
	t.Run("rejected_sign_in_prints_no_count", func(t *testing.T) {
		c, _, auth, prompts := newCountConsole(t, "ann@example.com\nwrong\n")

		err := c.Authenticate(context.Background())
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))

		var out bytes.Buffer
		err = c.PrintCount(context.Background(), false, &out)
		assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
		assert.Empty(t, out.String())
		assert.Contains(t, prompts.String(), "Password: ")

		c.SignOut(context.Background())
		assert.Equal(t, 0, auth.signOutCalls)
	})

	t.Run("signed_in_prints_count_then_signs_out", func(t *testing.T) {
		c, _, auth, _ := newCountConsole(t, "ann@example.com\npw\n")
		require.NoError(t, c.Authenticate(context.Background()))

		var out bytes.Buffer
		require.NoError(t, c.PrintCount(context.Background(), false, &out))
		assert.Equal(t, "1\n", out.String())

		c.SignOut(context.Background())
		c.SignOut(context.Background())
		assert.Equal(t, 1, auth.signOutCalls)
	})

	t.Run("watch_follows_changes_until_ctx_done", func(t *testing.T) {
		c, svc, _, _ := newCountConsole(t, "ann@example.com\npw\n")
		require.NoError(t, c.Authenticate(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		out := &syncBuffer{}
		done := make(chan error, 1)
		go func() { done <- c.PrintCount(ctx, true, out) }()

		require.Eventually(t, func() bool { return out.String() == "1\n" }, 2*time.Second, 5*time.Millisecond)
		_, err := svc.Create(context.Background(), event.CreateCmd{
			Name: "Run", Description: "5k", Date: "2025-07-01", Participants: "10",
		})
		require.NoError(t, err)
		require.Eventually(t, func() bool { return out.String() == "1\n2\n" }, 2*time.Second, 5*time.Millisecond)

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("watch did not stop")
		}
	})
}
