// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/onebot-dev/onebot/internal/config"
	"github.com/onebot-dev/onebot/internal/module"
)

// NewModulesCmd creates the modules subcommand.
func NewModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect discoverable modules",
	}
	cmd.AddCommand(newModulesListCmd())
	cmd.AddCommand(newModulesIntentsCmd())
	return cmd
}

func newModulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every module the bot would load",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			src, err := buildSource(cfg)
			if err != nil {
				return err
			}
			entries, err := src.Entries(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tINTENTS\tDESCRIPTION")
			for _, e := range entries {
				m := e.Manifest
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					m.Name, m.Version, m.Type, strings.Join(m.Intents, ","), m.Description)
			}
			return w.Flush()
		},
	}
}

func newModulesIntentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "intents",
		Short: "Print the gateway intents the bot would request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			src, err := buildSource(cfg)
			if err != nil {
				return err
			}
			intents, err := module.Intents(cmd.Context(), src)
			if err != nil {
				return err
			}
			for _, intent := range intents {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), intent); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
