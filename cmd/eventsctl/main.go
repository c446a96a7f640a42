package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	zlog "github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/baechuer/community-events/internal/bootstrap"
	"github.com/baechuer/community-events/internal/config"
	"github.com/baechuer/community-events/internal/console"
	"github.com/baechuer/community-events/internal/logger"
)

func main() {
	// the screens own stdout; keep logs quiet on stderr
	if os.Getenv("LOG_LEVEL") == "" {
		_ = os.Setenv("LOG_LEVEL", "warn")
	}
	logger.InitWithWriter(os.Stderr)

	app := &cli.App{
		Name:   "eventsctl",
		Usage:  "Browse, create and discuss community events from the terminal.",
		Action: runShell,
		Commands: []*cli.Command{
			shellCommand(),
			countCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		zlog.Error().Err(err).Msg("eventsctl failed")
		os.Exit(1)
	}
}

func shellCommand() *cli.Command {
	return &cli.Command{
		Name:   "shell",
		Usage:  "Sign in and use the interactive screens (default).",
		Action: runShell,
	}
}

func countCommand() *cli.Command {
	return &cli.Command{
		Name:  "count",
		Usage: "Print the number of events.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Keep printing the count as events change."},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			deps, err := build(ctx)
			if err != nil {
				return err
			}
			defer deps.Close()

			// prompts go to stderr so stdout carries only counts
			cons := console.New(deps.Sessions, deps.Events, os.Stdin, os.Stderr, passwordOptions()...)
			if err := cons.Authenticate(ctx); err != nil {
				return err
			}
			defer cons.SignOut(ctx)

			wctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cons.PrintCount(wctx, c.Bool("watch"), os.Stdout)
		},
	}
}

// runShell leaves SIGINT at its default so Ctrl-C exits even while a prompt
// is waiting for input.
func runShell(c *cli.Context) error {
	ctx := c.Context
	deps, err := build(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	return console.New(deps.Sessions, deps.Events, os.Stdin, os.Stdout, passwordOptions()...).Run(ctx)
}

// passwordOptions hides typed passwords when stdin is a terminal.
func passwordOptions() []console.Option {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return []console.Option{console.WithPasswordReader(func() (string, error) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	})}
}

func build(ctx context.Context) (*bootstrap.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return bootstrap.Build(ctx, cfg)
}
