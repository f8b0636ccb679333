// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package admin provides operator commands for managing modules and
// restarting the bot.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

// Name is the module name.
const Name = "admin"

// Manifest describes the module.
var Manifest = module.Manifest{
	Name:        Name,
	Version:     "1.0.0",
	Type:        module.TypeBuiltin,
	Description: "Operator commands for modules and restarts",
	Intents:     []string{"Guilds", "GuildMessages"},
}

// Config configures the module.
type Config struct {
	// Operators lists the author ids allowed to run admin commands.
	// An empty list allows everyone, which suits the local console.
	Operators []string
}

// Register makes the module available to the loader.
func Register(cfg Config) {
	module.RegisterBuiltin(Manifest, Factory(cfg))
}

// Factory returns the module factory for cfg.
func Factory(cfg Config) module.Factory {
	return func(host module.Host) (module.Module, error) {
		return &Module{
			operators: slices.Clone(cfg.Operators),
			host:      host,
			logger:    slog.Default().With("module", Name),
		}, nil
	}
}

// Module is the admin module.
type Module struct {
	operators []string
	host      module.Host
	logger    *slog.Logger
}

var _ module.Module = (*Module)(nil)

// Name implements module.Module.
func (m *Module) Name() string { return Name }

// Description implements module.Module.
func (m *Module) Description() string { return Manifest.Description }

// OnLoad implements module.Module.
func (m *Module) OnLoad(context.Context) error { return nil }

// Commands implements module.Module.
func (m *Module) Commands(context.Context) ([]command.Command, error) {
	moduleOpt := []command.Option{{Name: "module", Description: "Module name", Required: true}}
	return []command.Command{
		{
			Name:        "modules",
			Module:      Name,
			Description: "List loaded and available modules",
			Usage:       "modules",
			Handler:     m.guard(m.list),
		},
		{
			Name:        "load",
			Module:      Name,
			Description: "Load a module",
			Usage:       "load <module>",
			Options:     moduleOpt,
			Handler:     m.guard(m.load),
		},
		{
			Name:        "unload",
			Module:      Name,
			Description: "Unload a module",
			Usage:       "unload <module>",
			Options:     moduleOpt,
			Handler:     m.guard(m.unload),
		},
		{
			Name:        "restart",
			Module:      Name,
			Description: "Restart the bot",
			Usage:       "restart",
			Handler:     m.guard(m.restart),
		},
	}, nil
}

// guard rejects callers that are not operators.
func (m *Module) guard(h command.Handler) command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		if len(m.operators) > 0 && !slices.Contains(m.operators, inv.AuthorID) {
			m.logger.WarnContext(ctx, "admin command denied", "command", inv.Name, "author_id", inv.AuthorID)
			return command.ErrPermissionDenied(inv.Name, inv.AuthorID)
		}
		return h(ctx, inv)
	}
}

func (m *Module) list(ctx context.Context, inv *command.Invocation) error {
	manager := m.host.Modules()
	unloaded, err := manager.UnloadedModules(ctx)
	if err != nil {
		return err
	}
	return inv.Reply.Reply(ctx, FormatModules(manager.LoadedModules(), unloaded))
}

// FormatModules renders the loaded and available module lists.
func FormatModules(loaded, unloaded []string) string {
	join := func(names []string) string {
		if len(names) == 0 {
			return "(none)"
		}
		return strings.Join(names, ", ")
	}
	return fmt.Sprintf("Loaded: %s\nAvailable: %s", join(loaded), join(unloaded))
}

func (m *Module) load(ctx context.Context, inv *command.Invocation) error {
	name := strings.TrimSpace(inv.Args)
	if name == "" {
		return command.ErrInvalidArgs("load", "load <module>")
	}

	m.logger.InfoContext(ctx, "admin load", "target", name, "author_id", inv.AuthorID)
	changed, err := m.host.Modules().LoadModule(ctx, name)
	switch {
	case isNotFound(err):
		return inv.Reply.Reply(ctx, fmt.Sprintf("No module named %s.", name))
	case err != nil && changed:
		return inv.Reply.Reply(ctx, fmt.Sprintf("Loaded %s, but it failed to activate.", name))
	case err != nil:
		return err
	case !changed:
		return inv.Reply.Reply(ctx, fmt.Sprintf("%s is already loaded.", name))
	}
	return inv.Reply.Reply(ctx, fmt.Sprintf("Loaded %s.", name))
}

func (m *Module) unload(ctx context.Context, inv *command.Invocation) error {
	name := strings.TrimSpace(inv.Args)
	if name == "" {
		return command.ErrInvalidArgs("unload", "unload <module>")
	}

	m.logger.InfoContext(ctx, "admin unload", "target", name, "author_id", inv.AuthorID)
	changed, err := m.host.Modules().UnloadModule(ctx, name)
	if err != nil {
		return err
	}
	if !changed {
		return inv.Reply.Reply(ctx, fmt.Sprintf("%s is not loaded.", name))
	}
	return inv.Reply.Reply(ctx, fmt.Sprintf("Unloaded %s.", name))
}

func (m *Module) restart(ctx context.Context, inv *command.Invocation) error {
	m.logger.InfoContext(ctx, "admin restart", "author_id", inv.AuthorID)
	if err := inv.Reply.Reply(ctx, "Restarting..."); err != nil {
		m.logger.WarnContext(ctx, "restart notice not delivered", "error", err)
	}
	return m.host.Restart(ctx)
}

func isNotFound(err error) bool {
	return err != nil && errutil.Code(err) == module.CodeModuleNotFound
}
