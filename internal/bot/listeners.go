// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package bot

import (
	"slices"
	"sync"

	"github.com/onebot-dev/onebot/internal/module"
)

// listeners distributes inbound messages to module subscribers.
type listeners struct {
	mu     sync.RWMutex
	subs   map[uint64]module.MessageHandler
	nextID uint64
}

func newListeners() *listeners {
	return &listeners{
		subs: make(map[uint64]module.MessageHandler),
	}
}

// subscribe adds fn and returns a function removing it. Calling the
// returned function more than once is harmless.
func (l *listeners) subscribe(fn module.MessageHandler) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextID
	l.nextID++
	l.subs[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs, id)
	}
}

// snapshot returns the current subscribers in subscription order.
func (l *listeners) snapshot() []module.MessageHandler {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]uint64, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]module.MessageHandler, len(ids))
	for i, id := range ids {
		out[i] = l.subs[id]
	}
	return out
}

func (l *listeners) len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.subs)
}
