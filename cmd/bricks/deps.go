// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/holomush/bricks/internal/observability"
	"github.com/holomush/bricks/internal/xdg"
	"github.com/holomush/bricks/pkg/cache"
	"github.com/holomush/bricks/pkg/loader"
)

// ObservabilityServer wraps the methods used by serve from
// observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
}

// Migrator wraps the methods used by the cache migrate command from
// cache.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (version uint, dirty bool, err error)
	Close() error
}

// Deps contains injectable dependencies for the CLI commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// PostgresOpener connects the Postgres cache backend.
	// Default: cache.OpenPostgres
	PostgresOpener func(ctx context.Context, dsn string) (cache.Store, func(), error)

	// MigratorFactory creates a schema migrator for the Postgres backend.
	// Default: cache.NewMigrator
	MigratorFactory func(databaseURL string) (Migrator, error)

	// CacheDirGetter returns the default file cache directory.
	// Default: xdg.CacheDir
	CacheDirGetter func() (string, error)

	// ConfigDirGetter returns the directory searched for bricks.yaml when
	// --config is not set.
	// Default: xdg.ConfigDir
	ConfigDirGetter func() (string, error)

	// ServerFactory creates the metrics and health server of serve.
	// Default: observability.NewServer with the loader metrics registered
	ServerFactory func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer
}

func (d *Deps) withDefaults() *Deps {
	out := Deps{}
	if d != nil {
		out = *d
	}
	if out.PostgresOpener == nil {
		out.PostgresOpener = func(ctx context.Context, dsn string) (cache.Store, func(), error) {
			s, err := cache.OpenPostgres(ctx, dsn)
			if err != nil {
				return nil, nil, err
			}
			return s, s.Close, nil
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(databaseURL string) (Migrator, error) {
			return cache.NewMigrator(databaseURL)
		}
	}
	if out.CacheDirGetter == nil {
		out.CacheDirGetter = xdg.CacheDir
	}
	if out.ConfigDirGetter == nil {
		out.ConfigDirGetter = xdg.ConfigDir
	}
	if out.ServerFactory == nil {
		out.ServerFactory = func(addr string, ready observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, ready,
				observability.WithCollectors(loader.RegisterMetrics),
				observability.WithLogger(logger),
			)
		}
	}
	return &out
}
