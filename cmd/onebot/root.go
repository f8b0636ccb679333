// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/onebot-dev/onebot/internal/config"
)

// NewRootCmd creates the root command for the onebot CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onebot",
		Short: "onebot - a modular chat bot",
		Long: `onebot is a chat bot host built from independently packaged modules.
Modules are compiled in or scripted in Lua and discovered from a modules
directory; their commands are merged into one dispatch table.`,
		SilenceUsage: true,
	}

	config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewModulesCmd())
	cmd.AddCommand(NewSchemaCmd())

	return cmd
}
