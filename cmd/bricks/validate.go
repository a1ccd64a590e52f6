// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holomush/bricks/internal/discovery"
)

func (a *app) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [installed.yaml]",
		Short: "Validate an installed package manifest",
		Long: `Check an installed.yaml against its schema and report the brick
packages it lists. Defaults to the configured manifest.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.InstalledPath
			if len(args) == 1 {
				path = args[0]
			}

			installed, err := discovery.LoadInstalled(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			names := installed.ListPackagesByType(discovery.BrickPackageType)
			missing := 0
			for _, name := range names {
				if root, ok := installed.InstallRoot(name); ok {
					fmt.Fprintf(out, "ok       %s (%s)\n", name, root)
				} else {
					fmt.Fprintf(out, "missing  %s\n", name)
					missing++
				}
			}
			fmt.Fprintf(out, "%s: %d packages, %d bricks, %d missing\n",
				installed.Path(), len(installed.Packages()), len(names), missing)
			return nil
		},
	}
}
