// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/bricks/internal/discovery"
	"github.com/holomush/bricks/internal/logging"
	"github.com/holomush/bricks/pkg/cache"
	"github.com/holomush/bricks/pkg/loader"
)

// app holds state shared by the subcommands of one invocation.
type app struct {
	deps       *Deps
	configFile string
	metrics    bool

	cfg      *Config
	logger   *slog.Logger
	registry *prometheus.Registry
}

// NewRootCmd creates the root command for the bricks CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

func newRootCmd(deps *Deps) *cobra.Command {
	a := &app{deps: deps.withDefaults()}

	cmd := &cobra.Command{
		Use:   "bricks",
		Short: "Inspect and load HoloMUSH brick packages",
		Long: `bricks discovers the brick packages listed in an installed.yaml
manifest, activates their components and routes their events.

Configuration is read from --config, BRICKS_* environment variables and
flags, in increasing order of precedence.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.writeMetrics,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file path (default XDG_CONFIG_HOME/bricks/bricks.yaml)")
	pf.String("installed", "", "installed package manifest (default installed.yaml)")
	pf.String("config-dir", "", "component config directory (default config)")
	pf.String("cache-dir", "", "file cache directory (default XDG_CACHE_HOME/bricks)")
	pf.String("cache-mode", "", "cache mode: prod or dev (default prod)")
	pf.String("cache-backend", "", "cache backend: file or postgres (default file)")
	pf.String("database-url", "", "PostgreSQL URL for the postgres cache backend")
	pf.String("log-format", "", "log format: json or text (default text)")
	pf.String("log-level", "", "log level: debug, info, warn or error (default warn)")
	pf.StringSlice("scan-exclude", nil, "glob of source paths skipped when scanning brick packages")
	pf.BoolVar(&a.metrics, "metrics", false, "print Prometheus metrics to stderr when the command succeeds")

	cmd.AddCommand(a.newListCmd())
	cmd.AddCommand(a.newComponentsCmd())
	cmd.AddCommand(a.newDispatchCheckCmd())
	cmd.AddCommand(a.newServeCmd())
	cmd.AddCommand(a.newCacheCmd())
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(a.newValidateCmd())

	return cmd
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	path := a.configFile
	if path == "" {
		path = defaultConfigFile(a.deps.ConfigDirGetter)
	}
	cfg, err := loadConfig(cmd.Flags(), path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Both were checked by Validate.
	format, _ := logging.ParseFormat(cfg.LogFormat) //nolint:errcheck // validated
	level, _ := logging.ParseLevel(cfg.LogLevel)    //nolint:errcheck // validated

	a.cfg = cfg
	a.logger = logging.Setup(logging.Options{
		Service: "bricks",
		Version: version,
		Format:  format,
		Level:   level,
	}, cmd.ErrOrStderr())

	a.registry = prometheus.NewRegistry()
	loader.RegisterMetrics(a.registry)
	return nil
}

func (a *app) writeMetrics(cmd *cobra.Command, _ []string) error {
	if !a.metrics {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return oops.Code("METRICS_FAILED").Wrap(err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return oops.Code("METRICS_FAILED").Wrap(err)
		}
	}
	return nil
}

// openCache opens the configured cache backend. The returned func releases it.
func (a *app) openCache(ctx context.Context) (*cache.Manager, func(), error) {
	// Checked by Validate.
	mode, _ := cache.ParseMode(a.cfg.CacheMode) //nolint:errcheck // validated
	opts := []cache.Option{cache.WithMode(mode), cache.WithLogger(a.logger)}

	if a.cfg.CacheBackend == backendPostgres {
		store, closeFn, err := a.deps.PostgresOpener(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return nil, nil, oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
		}
		return cache.NewManager(store, opts...), closeFn, nil
	}

	dir, err := a.cacheDir()
	if err != nil {
		return nil, nil, err
	}
	return cache.NewManager(cache.NewFileStore(dir), opts...), func() {}, nil
}

func (a *app) cacheDir() (string, error) {
	if a.cfg.CacheDir != "" {
		return a.cfg.CacheDir, nil
	}
	dir, err := a.deps.CacheDirGetter()
	if err != nil {
		return "", oops.With("operation", "resolve cache directory").Wrap(err)
	}
	return dir, nil
}

// load runs a fresh or cached load of the installed bricks.
func (a *app) load(ctx context.Context, cached bool) (*loader.Loader, func(), error) {
	installed, err := discovery.LoadInstalled(a.cfg.InstalledPath)
	if err != nil {
		return nil, nil, err
	}

	// Patterns were checked by Validate.
	scanner, _ := discovery.NewScanner(a.cfg.ScanExclude...) //nolint:errcheck // validated

	manager, closeFn, err := a.openCache(ctx)
	if err != nil {
		return nil, nil, err
	}

	l := loader.New(
		loader.WithEnumerator(installed),
		loader.WithScanner(scanner),
		loader.WithCache(manager),
		loader.WithConfigDir(a.cfg.ConfigDir),
		loader.WithLogger(a.logger),
	)

	if cached {
		err = l.LoadFromCache(ctx)
	} else {
		err = l.LoadFresh(ctx)
	}
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return l, closeFn, nil
}
