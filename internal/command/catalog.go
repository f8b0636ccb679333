// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Catalog is the remote command catalog of the chat platform.
//
// SetCommands receives the complete command set on every call, never a delta,
// so republishing an unchanged set is a no-op for the remote side.
type Catalog interface {
	SetCommands(ctx context.Context, specs []Spec) error
}

// NopCatalog discards every publish.
type NopCatalog struct{}

// SetCommands does nothing.
func (NopCatalog) SetCommands(context.Context, []Spec) error { return nil }

// LogCatalog logs every published set. Used when the gateway has no catalog.
type LogCatalog struct {
	Logger *slog.Logger
}

// SetCommands logs the names of specs.
func (c LogCatalog) SetCommands(ctx context.Context, specs []Spec) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	logger.InfoContext(ctx, "command catalog published", "count", len(specs), "commands", names)
	return nil
}

// MemoryCatalog records every publish in memory.
type MemoryCatalog struct {
	mu        sync.Mutex
	publishes [][]Spec
}

// SetCommands records a copy of specs.
func (c *MemoryCatalog) SetCommands(_ context.Context, specs []Spec) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishes = append(c.publishes, slices.Clone(specs))
	return nil
}

// Publishes returns how many sets were published.
func (c *MemoryCatalog) Publishes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.publishes)
}

// Current returns the names in the most recent publish, or nil if none.
func (c *MemoryCatalog) Current() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.publishes) == 0 {
		return nil
	}
	last := c.publishes[len(c.publishes)-1]
	names := make([]string, len(last))
	for i, s := range last {
		names[i] = s.Name
	}
	return names
}
