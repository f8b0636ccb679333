// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package utility provides the ping and help commands.
package utility

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/module"
)

// Name is the module name.
const Name = "utility"

// Manifest describes the module.
var Manifest = module.Manifest{
	Name:        Name,
	Version:     "1.0.0",
	Type:        module.TypeBuiltin,
	Description: "General purpose commands",
	Intents:     []string{"Guilds"},
}

// Register makes the module available to the loader.
func Register() {
	module.RegisterBuiltin(Manifest, Factory)
}

// Factory creates the module.
func Factory(host module.Host) (module.Module, error) {
	return &Module{host: host}, nil
}

// Module is the utility module.
type Module struct {
	host module.Host
}

var _ module.Module = (*Module)(nil)

// Name implements module.Module.
func (m *Module) Name() string { return Name }

// Description implements module.Module.
func (m *Module) Description() string { return Manifest.Description }

// Commands implements module.Module.
func (m *Module) Commands(context.Context) ([]command.Command, error) {
	return []command.Command{
		{
			Name:        "ping",
			Module:      Name,
			Description: "Check that the bot is responding",
			Usage:       "ping",
			Handler:     ping,
		},
		{
			Name:        "help",
			Module:      Name,
			Description: "List available commands",
			Usage:       "help [command]",
			Options:     []command.Option{{Name: "command", Description: "Show usage for one command"}},
			Handler:     m.help,
		},
	}, nil
}

// OnLoad implements module.Module.
func (m *Module) OnLoad(context.Context) error { return nil }

func ping(ctx context.Context, inv *command.Invocation) error {
	return inv.Reply.Reply(ctx, "Pong!")
}

func (m *Module) help(ctx context.Context, inv *command.Invocation) error {
	name := strings.TrimPrefix(strings.TrimSpace(inv.Args), command.Prefix)
	if name != "" {
		matches := m.host.Commands().Query(func(c command.Command) bool { return c.Name == name })
		if len(matches) == 0 {
			return command.ErrUnknownCommand(name)
		}
		c := matches[0]
		return inv.Reply.Reply(ctx, fmt.Sprintf("%s%s - %s\nModule: %s", command.Prefix, c.Usage, c.Description, c.Module))
	}

	return inv.Reply.Reply(ctx, FormatHelp(m.host.Commands().Query(nil)))
}

// FormatHelp renders cmds as a name-sorted list, one command per line.
func FormatHelp(cmds []command.Command) string {
	if len(cmds) == 0 {
		return "No commands are loaded."
	}

	slices.SortFunc(cmds, func(a, b command.Command) int { return strings.Compare(a.Name, b.Name) })

	var sb strings.Builder
	sb.WriteString("Available commands:")
	for _, c := range cmds {
		fmt.Fprintf(&sb, "\n%s%s - %s", command.Prefix, c.Name, c.Description)
	}
	return sb.String()
}
