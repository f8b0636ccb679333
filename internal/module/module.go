// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package module defines the pluggable feature unit of the bot and the
// sources it is discovered from.
package module

import (
	"context"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
)

// Module is an independently packaged feature unit.
//
// The loader holds modules only through this interface. Commands is called
// exactly once per activation into the command registry and may perform its
// own discovery. OnLoad runs after the gateway reports ready; a non-nil error
// marks the module's activation as failed without affecting other modules.
type Module interface {
	Name() string
	Description() string
	Commands(ctx context.Context) ([]command.Command, error)
	OnLoad(ctx context.Context) error
}

// Unloader is implemented by modules that hold resources beyond their
// commands, such as message listeners or timers.
type Unloader interface {
	OnUnload(ctx context.Context) error
}

// Factory constructs a module bound to host.
//
// Factories must be free of side effects: the loader may build transient
// instances purely to compare identities. Listeners, timers, and network
// work belong in OnLoad.
type Factory func(host Host) (Module, error)

// MessageHandler reacts to an inbound chat message.
type MessageHandler func(ctx context.Context, msg gateway.Message)

// Host is the capability set a module receives from the bot.
type Host interface {
	// Gateway returns the outbound chat transport.
	Gateway() gateway.Gateway

	// OnMessage registers h for every inbound message and returns a
	// function that removes it.
	OnMessage(h MessageHandler) (remove func())

	// Module looks up another loaded module by name.
	Module(name string) (Module, bool)

	// Modules returns the operator-level module controls.
	Modules() Manager

	// Commands returns read access to the active command set.
	Commands() CommandQuery

	// Restart asks the process supervisor to restart the bot.
	Restart(ctx context.Context) error
}

// Manager is the operator-facing subset of the module loader.
type Manager interface {
	LoadModule(ctx context.Context, name string) (bool, error)
	UnloadModule(ctx context.Context, name string) (bool, error)
	LoadedModules() []string
	UnloadedModules(ctx context.Context) ([]string, error)
}

// CommandQuery is read access to the command registry.
type CommandQuery interface {
	Query(pred func(command.Command) bool) []command.Command
}
