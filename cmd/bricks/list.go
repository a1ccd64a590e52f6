// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/bricks/pkg/brick"
	"github.com/holomush/bricks/pkg/registry"
)

func (a *app) newListCmd() *cobra.Command {
	var (
		asJSON bool
		cached bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed bricks",
		Long: `Load the installed bricks and list each one with its entry type and
member count. Without --cached the packages are scanned and the cache is
refreshed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, closeFn, err := a.load(cmd.Context(), cached)
			if err != nil {
				return err
			}
			defer closeFn()

			bricks := l.Registry().Bricks()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(bricks); err != nil {
					return oops.With("operation", "encode bricks").Wrap(err)
				}
				return nil
			}
			return writeBricks(cmd, bricks)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&cached, "cached", false, "restore the registry from the cache when possible")
	return cmd
}

func writeBricks(cmd *cobra.Command, bricks []registry.Brick) error {
	if len(bricks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No bricks installed")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tENTRY\tMEMBERS")
	for _, b := range bricks {
		fmt.Fprintf(w, "%s\t%s\t%d\n", b.Package, b.Entry, len(b.Members))
	}
	return w.Flush()
}

func (a *app) newComponentsCmd() *cobra.Command {
	var (
		kind   string
		cached bool
	)

	cmd := &cobra.Command{
		Use:   "components",
		Short: "List member types of installed bricks by tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tag := brick.TagKind(kind)
			if tag != brick.KindComponent && tag != brick.KindEvent {
				return oops.Code("INVALID_ARGUMENT").
					With("kind", kind).
					Errorf("kind must be %q or %q, got %q", brick.KindComponent, brick.KindEvent, kind)
			}

			l, closeFn, err := a.load(cmd.Context(), cached)
			if err != nil {
				return err
			}
			defer closeFn()

			for _, id := range l.Registry().Components(registry.Tagged(brick.Default, tag)) {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", string(brick.KindComponent), "tag kind: component or event")
	cmd.Flags().BoolVar(&cached, "cached", true, "restore the registry from the cache when possible")
	return cmd
}
