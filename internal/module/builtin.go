// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type builtin struct {
	manifest Manifest
	factory  Factory
}

var (
	builtinsMu sync.RWMutex
	builtins   = make(map[string]builtin)
)

// RegisterBuiltin makes a compiled module available under m.Name.
// It is meant to be called from package init functions and panics on an
// invalid manifest or a duplicate name.
func RegisterBuiltin(m Manifest, f Factory) {
	if f == nil {
		panic("module: RegisterBuiltin factory is nil")
	}
	m.Type = TypeBuiltin
	if err := m.Validate(); err != nil {
		panic(fmt.Sprintf("module: RegisterBuiltin %q: %v", m.Name, err))
	}

	builtinsMu.Lock()
	defer builtinsMu.Unlock()
	if _, dup := builtins[m.Name]; dup {
		panic(fmt.Sprintf("module: RegisterBuiltin called twice for %q", m.Name))
	}
	builtins[m.Name] = builtin{manifest: m, factory: f}
}

func lookupBuiltin(name string) (builtin, bool) {
	builtinsMu.RLock()
	defer builtinsMu.RUnlock()
	b, ok := builtins[name]
	return b, ok
}

// BuiltinSource serves the compiled modules registered with RegisterBuiltin.
type BuiltinSource struct{}

// Entries returns every registered builtin, sorted by name.
func (BuiltinSource) Entries(_ context.Context) ([]Entry, error) {
	builtinsMu.RLock()
	defer builtinsMu.RUnlock()

	entries := make([]Entry, 0, len(builtins))
	for _, b := range builtins {
		m := b.manifest
		entries = append(entries, Entry{Manifest: &m})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Open returns the factory registered under name.
func (BuiltinSource) Open(_ context.Context, name string) (Factory, error) {
	b, ok := lookupBuiltin(name)
	if !ok {
		return nil, ErrModuleNotFound(name)
	}
	return b.factory, nil
}

// StaticSource is a fixed set of modules, mainly for tests and embedding.
type StaticSource struct {
	entries   []Entry
	factories map[string]Factory
}

// NewStaticSource creates an empty StaticSource.
func NewStaticSource() *StaticSource {
	return &StaticSource{factories: make(map[string]Factory)}
}

// Add registers a module. A manifest with only a name is enough; intents
// are optional.
func (s *StaticSource) Add(m Manifest, f Factory) *StaticSource {
	if m.Type == "" {
		m.Type = TypeBuiltin
	}
	if _, dup := s.factories[m.Name]; !dup {
		s.entries = append(s.entries, Entry{Manifest: &m})
	}
	s.factories[m.Name] = f
	return s
}

// Entries returns the modules in insertion order.
func (s *StaticSource) Entries(_ context.Context) ([]Entry, error) {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Open returns the factory registered under name.
func (s *StaticSource) Open(_ context.Context, name string) (Factory, error) {
	f, ok := s.factories[name]
	if !ok {
		return nil, ErrModuleNotFound(name)
	}
	return f, nil
}
