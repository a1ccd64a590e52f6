// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/bricks/internal/errutil"
	"github.com/holomush/bricks/pkg/cache"
	"github.com/holomush/bricks/pkg/loader"
)

func (a *app) newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the discovery cache",
	}
	cmd.AddCommand(a.newCacheClearCmd())
	cmd.AddCommand(a.newCachePathCmd())
	cmd.AddCommand(a.newCacheMigrateCmd())
	return cmd
}

func (a *app) newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cache entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, closeFn, err := a.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := manager.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared")
			return nil
		},
	}
}

func (a *app) newCachePathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the registry snapshot is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := cache.Name(loader.CacheNamespace, loader.CacheKey)
			if a.cfg.CacheBackend == backendPostgres {
				fmt.Fprintf(cmd.OutOrStdout(), "brick_cache row %s\n", name)
				return nil
			}

			dir, err := a.cacheDir()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, name))
			return nil
		},
	}
}

func (a *app) newCacheMigrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres cache schema",
		Long: `Apply all pending migrations of the brick_cache table to the database
at database-url. With --down the table is dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.DatabaseURL == "" {
				return oops.Code("CONFIG_INVALID").
					Hint("set database-url or BRICKS_DATABASE_URL").
					Errorf("database-url is required")
			}

			m, err := a.deps.MigratorFactory(a.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := m.Close(); closeErr != nil {
					errutil.LogError(a.logger, "failed to close migrator", closeErr)
				}
			}()

			if down {
				err = m.Down()
			} else {
				err = m.Up()
			}
			if err != nil {
				return err
			}

			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if dirty {
				fmt.Fprintf(out, "Schema version %d (dirty)\n", version)
			} else {
				fmt.Fprintf(out, "Schema version %d\n", version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "roll back all migrations")
	return cmd
}
