// Package console is the line-oriented terminal client: sign in, a home
// screen with the live event count, and screens to list, create and inspect
// events.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/baechuer/community-events/internal/application/event"
	"github.com/baechuer/community-events/internal/application/session"
	"github.com/baechuer/community-events/internal/domain"
	"github.com/baechuer/community-events/internal/logger"
)

type screen int

const (
	screenLogin screen = iota
	screenHome
	screenList
	screenCreate
	screenDetails
	screenQuit
)

// PasswordReader reads a secret without echoing it.
type PasswordReader func() (string, error)

type Option func(*Console)

func WithPasswordReader(fn PasswordReader) Option {
	return func(c *Console) { c.readPassword = fn }
}

type Console struct {
	sessions *session.Gateway
	events   *event.Service

	in           *bufio.Reader
	out          io.Writer
	outMu        sync.Mutex
	readPassword PasswordReader

	session  *session.Session
	selected string // event id shown on the details screen

	watch  *event.CountSubscription
	count  atomic.Int64
	onHome atomic.Bool
}

func New(sessions *session.Gateway, events *event.Service, in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		sessions: sessions,
		events:   events,
		in:       bufio.NewReader(in),
		out:      out,
	}
	for _, o := range opts {
		o(c)
	}
	if c.readPassword == nil {
		c.readPassword = func() (string, error) { return c.readLine() }
	}
	return c
}

// Run drives the screens until the user quits, input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	defer c.stopWatch()

	next := screenLogin
	for next != screenQuit {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var err error
		switch next {
		case screenLogin:
			next, err = c.login(ctx)
		case screenHome:
			next, err = c.home(ctx)
		case screenList:
			next, err = c.list(ctx)
		case screenCreate:
			next, err = c.create(ctx)
		case screenDetails:
			next, err = c.details(ctx)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	c.printf("Bye.\n")
	return nil
}

func (c *Console) printf(format string, args ...any) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// fail shows an error the way the user should read it.
func (c *Console) fail(err error) {
	var ae *domain.AppError
	if errors.As(err, &ae) {
		c.printf("! %s\n", ae.Message)
		return
	}
	c.printf("! %s\n", err)
}

func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *Console) prompt(label string) (string, error) {
	c.printf("%s", label)
	return c.readLine()
}

func (c *Console) startWatch(ctx context.Context) {
	c.stopWatch()
	sub, err := c.events.WatchCount(ctx, func(n int) {
		prev := c.count.Swap(int64(n))
		if prev != int64(n) && c.onHome.Load() {
			c.printf("\n* live: %d events\n> ", n)
		}
	})
	if err != nil {
		logger.WithCtx(ctx).Warn().Err(err).Msg("live count unavailable")
		c.fail(err)
		return
	}
	c.watch = sub
}

func (c *Console) stopWatch() {
	if c.watch != nil {
		_ = c.watch.Close()
		c.watch = nil
	}
	c.onHome.Store(false)
}
