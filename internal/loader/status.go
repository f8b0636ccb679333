// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package loader

import "sync"

// Status is the two-flag load latch. Both flags only ever go from false to
// true. The fully loaded callbacks run exactly once, on the update that
// first sees both flags set.
type Status struct {
	mu             sync.Mutex
	modulesLoaded  bool
	commandsLoaded bool
	fired          bool
	callbacks      []func()
	done           chan struct{}
}

// NewStatus creates a Status with both flags unset.
func NewStatus() *Status {
	return &Status{done: make(chan struct{})}
}

// OnFullyLoaded registers fn to run once both flags are set. If that has
// already happened fn never runs.
func (s *Status) OnFullyLoaded(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks = append(s.callbacks, fn)
}

// SetModulesLoaded raises the modules flag and notifies the gate.
func (s *Status) SetModulesLoaded() {
	s.update(func() { s.modulesLoaded = true })
}

// SetCommandsLoaded raises the commands flag and notifies the gate.
func (s *Status) SetCommandsLoaded() {
	s.update(func() { s.commandsLoaded = true })
}

func (s *Status) update(set func()) {
	s.mu.Lock()
	set()
	if s.fired || !s.modulesLoaded || !s.commandsLoaded {
		s.mu.Unlock()
		return
	}
	s.fired = true
	close(s.done)
	callbacks := s.callbacks
	s.callbacks = nil
	s.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

// Flags returns the current flag values.
func (s *Status) Flags() (modulesLoaded, commandsLoaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modulesLoaded, s.commandsLoaded
}

// FullyLoaded reports whether both flags are set.
func (s *Status) FullyLoaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

// Done is closed once both flags are set.
func (s *Status) Done() <-chan struct{} {
	return s.done
}
