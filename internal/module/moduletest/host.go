// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package moduletest provides an in-memory module.Host for module tests.
package moduletest

import (
	"context"
	"sync"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/gateway/gatewaytest"
	"github.com/onebot-dev/onebot/internal/module"
)

// Compile-time interface check.
var _ module.Host = (*Host)(nil)

// Host is a module.Host backed by a recording gateway and a plain
// command registry. Modules and Manager are settable by tests.
type Host struct {
	GW       *gatewaytest.Gateway
	Registry *command.Registry
	Manager  module.Manager

	mu        sync.Mutex
	modules   map[string]module.Module
	listeners map[int]module.MessageHandler
	nextID    int
	restarts  int
}

// NewHost creates a Host with a fresh gateway and registry.
func NewHost() *Host {
	return &Host{
		GW:        gatewaytest.New(),
		Registry:  command.NewRegistry(),
		modules:   make(map[string]module.Module),
		listeners: make(map[int]module.MessageHandler),
	}
}

// Gateway implements module.Host.
func (h *Host) Gateway() gateway.Gateway { return h.GW }

// OnMessage implements module.Host.
func (h *Host) OnMessage(fn module.MessageHandler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

// Emit delivers msg synchronously to every registered listener.
func (h *Host) Emit(ctx context.Context, msg gateway.Message) {
	h.mu.Lock()
	fns := make([]module.MessageHandler, 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ctx, msg)
	}
}

// Listeners returns the number of registered message handlers.
func (h *Host) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}

// AddModule makes m visible through Module.
func (h *Host) AddModule(m module.Module) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modules[m.Name()] = m
}

// Module implements module.Host.
func (h *Host) Module(name string) (module.Module, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.modules[name]
	return m, ok
}

// Modules implements module.Host.
func (h *Host) Modules() module.Manager { return h.Manager }

// Commands implements module.Host.
func (h *Host) Commands() module.CommandQuery { return h.Registry }

// Restart implements module.Host and counts calls.
func (h *Host) Restart(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.restarts++
	return nil
}

// Restarts returns how often Restart was called.
func (h *Host) Restarts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.restarts
}
