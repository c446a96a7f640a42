// Package bootstrap wires configuration into the services shared by the API
// server and the terminal client.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/community-events/internal/application/event"
	"github.com/baechuer/community-events/internal/application/session"
	"github.com/baechuer/community-events/internal/config"
	"github.com/baechuer/community-events/internal/docstore"
	"github.com/baechuer/community-events/internal/infrastructure/authclient"
	docmem "github.com/baechuer/community-events/internal/infrastructure/docstore/memory"
	docpg "github.com/baechuer/community-events/internal/infrastructure/docstore/postgres"
	docredis "github.com/baechuer/community-events/internal/infrastructure/docstore/redis"
	"github.com/baechuer/community-events/internal/infrastructure/memory"
	rabbitpub "github.com/baechuer/community-events/internal/infrastructure/messaging/rabbitmq"
	redisinfra "github.com/baechuer/community-events/internal/infrastructure/redis"
	"github.com/baechuer/community-events/internal/infrastructure/security"
)

// SysClock implements the Clock ports using system time.
type SysClock struct{}

func (SysClock) Now() time.Time { return time.Now().UTC() }

// Deps holds everything built from a Config.
type Deps struct {
	Config   *config.Config
	Store    docstore.Store
	Events   *event.Service
	Sessions *session.Gateway

	// Checks are readiness probes keyed by backend name.
	Checks map[string]func(ctx context.Context) error

	closers []func() error
}

func Build(ctx context.Context, cfg *config.Config) (*Deps, error) {
	d := &Deps{
		Config: cfg,
		Checks: map[string]func(ctx context.Context) error{},
	}

	// 1) Infrastructure
	var rc *redisinfra.Client
	store, err := d.buildStore(ctx, &rc)
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	d.Store = store

	revoked := d.buildRevocations(rc)

	var pub event.EventPublisher = event.NoopPublisher{}
	if cfg.RabbitURL != "" {
		p, err := rabbitpub.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("rabbit publisher init: %w", err)
		}
		d.closers = append(d.closers, p.Close)
		pub = p
		zlog.Info().Str("exchange", p.Exchange()).Msg("rabbit publisher ready")
	} else {
		zlog.Warn().Msg("RABBIT_URL empty: domain events will not be published")
	}

	// 2) Application
	auth := authclient.New(cfg.AuthServiceURL, cfg.APIKey, cfg.AuthTimeout)
	verifier := security.NewJWT(cfg.JWTSecret, cfg.JWTIssuer)

	d.Sessions = session.NewGateway(auth, verifier, revoked, SysClock{})
	d.Events = event.New(store, cfg.EventsCollection, SysClock{}, pub)
	return d, nil
}

func (d *Deps) buildStore(ctx context.Context, rc **redisinfra.Client) (docstore.Store, error) {
	cfg := d.Config
	switch cfg.DocstoreDriver {
	case config.DriverPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		d.closers = append(d.closers, db.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("db ping: %w", err)
		}

		s := docpg.New(db, cfg.DatabaseURL, cfg.ProjectID)
		if err := s.EnsureSchema(pingCtx); err != nil {
			return nil, err
		}
		d.Checks["postgres"] = db.PingContext
		zlog.Info().Msg("docstore: postgres")
		return s, nil

	case config.DriverRedis:
		c, err := redisinfra.New(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		d.closers = append(d.closers, c.Close)
		d.Checks["redis"] = c.Ping
		*rc = c
		zlog.Info().Msg("docstore: redis")
		return docredis.New(c.GetRawClient(), cfg.ProjectID), nil

	case config.DriverMemory:
		zlog.Warn().Msg("docstore: memory, data is lost on exit")
		return docmem.New(), nil
	}
	return nil, fmt.Errorf("unknown docstore driver %q", cfg.DocstoreDriver)
}

// buildRevocations prefers redis so sign-outs are shared between processes.
func (d *Deps) buildRevocations(rc *redisinfra.Client) session.RevocationStore {
	if rc == nil && d.Config.RedisURL != "" {
		c, err := redisinfra.New(d.Config.RedisURL)
		if err != nil {
			zlog.Warn().Err(err).Msg("redis unavailable: sign-outs are tracked in memory")
		} else {
			d.closers = append(d.closers, c.Close)
			d.Checks["redis"] = c.Ping
			rc = c
		}
	}
	if rc == nil {
		return memory.NewRevocationStore(SysClock{})
	}
	return redisinfra.NewRevocationStore(rc, d.Config.ProjectID)
}

// Close releases resources in reverse order of creation. Safe to call twice.
func (d *Deps) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
