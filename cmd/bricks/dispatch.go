// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newDispatchCheckCmd() *cobra.Command {
	var cached bool

	cmd := &cobra.Command{
		Use:   "dispatch-check",
		Short: "Show the listeners bound to each event",
		Long: `Load and initialize the installed bricks, then print every registered
event type with the listener methods it is routed to, in dispatch order.
Listeners whose component is not active are marked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, closeFn, err := a.load(cmd.Context(), cached)
			if err != nil {
				return err
			}
			defer closeFn()

			router := l.Router()
			events := router.Events()
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events registered")
				return nil
			}

			for _, ev := range events {
				fmt.Fprintln(cmd.OutOrStdout(), ev)
				bindings := router.Listeners(ev)
				if len(bindings) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "  (no listeners)")
					continue
				}
				for _, b := range bindings {
					if l.Container().Has(b.Owner) {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s.%s\n", b.Owner, b.Method)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s.%s (inactive)\n", b.Owner, b.Method)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&cached, "cached", true, "restore the registry from the cache when possible")
	return cmd
}
