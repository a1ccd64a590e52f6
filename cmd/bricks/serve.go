// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/bricks/internal/errutil"
)

// Default values for serve flags.
const (
	defaultMetricsAddr = "127.0.0.1:9100"
	shutdownTimeout    = 5 * time.Second
)

func (a *app) newServeCmd() *cobra.Command {
	var (
		addr   string
		cached bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the installed bricks and keep them running",
		Long: `Load and initialize the installed bricks, then serve Prometheus metrics
and health probes until interrupted. /healthz/readiness reports 503 until
the load has finished.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd, addr, cached)
		},
	}

	cmd.Flags().StringVar(&addr, "metrics-addr", defaultMetricsAddr, "metrics/health HTTP address")
	cmd.Flags().BoolVar(&cached, "cached", true, "restore the registry from the cache when possible")
	return cmd
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command, addr string, cached bool) error {
	var ready atomic.Bool
	srv := a.deps.ServerFactory(addr, ready.Load, a.logger)

	errCh, err := srv.Start()
	if err != nil {
		return oops.Code("SERVER_START_FAILED").With("addr", addr).Wrap(err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			errutil.LogError(a.logger, "failed to stop observability server", err)
		}
	}()

	l, closeFn, err := a.load(ctx, cached)
	if err != nil {
		return err
	}
	defer closeFn()
	ready.Store(true)

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d bricks, metrics on http://%s/metrics\n",
		l.Registry().Len(), srv.Addr())

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
		return nil
	case err, ok := <-errCh:
		if ok && err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
		return nil
	}
}
