package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/community-events/internal/bootstrap"
	"github.com/baechuer/community-events/internal/config"
	"github.com/baechuer/community-events/internal/logger"
	"github.com/baechuer/community-events/internal/transport/http/handlers"
	authmw "github.com/baechuer/community-events/internal/transport/http/middleware"
	"github.com/baechuer/community-events/internal/transport/http/router"
)

const shutdownTimeout = 10 * time.Second

// App holds all dependencies for the service
type App struct {
	Config *config.Config
	Server *http.Server
	Deps   *bootstrap.Deps
}

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg)
	if err != nil {
		zlog.Fatal().Err(err).Msg("app init failed")
	}
	defer app.Deps.Close()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cfg.HTTPAddr).Str("env", cfg.AppEnv).Msg("listening")
		errCh <- app.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Error().Err(err).Msg("server crashed")
		}
	case <-ctx.Done():
		zlog.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			zlog.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	// 1) Infrastructure + application
	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 2) Transport
	h := handlers.NewEventsHandler(deps.Events)
	s := handlers.NewSessionHandler(deps.Sessions)
	auth := authmw.NewAuth(deps.Sessions)

	checks := make(map[string]handlers.Pinger, len(deps.Checks))
	for name, fn := range deps.Checks {
		checks[name] = handlers.PingFunc(fn)
	}
	z := handlers.NewHealthHandler(checks)

	// 3) Router
	httpHandler := router.New(h, s, auth, z, cfg)

	// 4) Server
	baseCtx, cancelBase := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpHandler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return baseCtx },
	}
	// ends open count streams, which Shutdown would otherwise wait on
	srv.RegisterOnShutdown(cancelBase)

	return &App{Config: cfg, Server: srv, Deps: deps}, nil
}
