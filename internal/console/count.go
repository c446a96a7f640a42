package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/baechuer/community-events/internal/domain"
)

// Authenticate asks for credentials once and opens a session for the
// non-interactive commands. The sign-in error is returned as is.
func (c *Console) Authenticate(ctx context.Context) error {
	email, err := c.prompt("Email: ")
	if err != nil {
		return err
	}
	c.printf("Password: ")
	password, err := c.readPassword()
	if err != nil {
		return err
	}

	s, err := c.sessions.SignIn(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return err
	}
	c.session = s
	return nil
}

// PrintCount writes the number of events to w, one per line. With watch it
// keeps writing as the collection changes until ctx is done. A session is
// required.
func (c *Console) PrintCount(ctx context.Context, watch bool, w io.Writer) error {
	if c.session == nil {
		return domain.ErrUnauthorized("sign in first")
	}

	if !watch {
		n, err := c.events.Count(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, n)
		return nil
	}

	sub, err := c.events.WatchCount(ctx, func(n int) { fmt.Fprintln(w, n) })
	if err != nil {
		return err
	}
	defer sub.Close()

	<-ctx.Done()
	return nil
}

// SignOut ends the session opened by Authenticate, if any.
func (c *Console) SignOut(ctx context.Context) {
	if c.session == nil {
		return
	}
	if err := c.sessions.SignOut(ctx, c.session.AccessToken); err != nil {
		c.fail(err)
	}
	c.session = nil
}
