// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package command provides the command registry, parser, and dispatch system.
package command

import (
	"context"
	"slices"
)

// Handler is the function signature for command handlers.
type Handler func(ctx context.Context, inv *Invocation) error

// Option describes one argument of a command for the remote catalog.
type Option struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required,omitempty"`
}

// Command is a named action contributed by a module.
//
// Module records the owning module by name only. Ownership of a loaded
// Command belongs to the Registry.
type Command struct {
	Name        string   // qualified name, unique across the registry
	Module      string   // owning module name
	Description string   // one line description
	Usage       string   // usage pattern, e.g. "load <module>"
	Options     []Option // catalog metadata
	Handler     Handler
}

// Spec returns the handler-free projection of c published to the catalog.
func (c Command) Spec() Spec {
	return Spec{
		Name:        c.Name,
		Description: c.Description,
		Options:     slices.Clone(c.Options),
	}
}

// Spec is what the remote command catalog knows about a command.
type Spec struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Options     []Option `json:"options,omitempty"`
}

// Invocation carries everything a handler needs to run one command.
type Invocation struct {
	Name      string // resolved command name
	Args      string // unparsed argument string
	ChannelID string
	AuthorID  string
	Reply     Replier
}

// Replier sends a plain text reply to the invoking channel.
type Replier interface {
	Reply(ctx context.Context, text string) error
}

// ReplierFunc adapts a function to Replier.
type ReplierFunc func(ctx context.Context, text string) error

// Reply calls f.
func (f ReplierFunc) Reply(ctx context.Context, text string) error {
	return f(ctx, text)
}

// OwnedBy returns a Query predicate matching commands of module.
func OwnedBy(module string) func(Command) bool {
	return func(c Command) bool {
		return c.Module == module
	}
}
