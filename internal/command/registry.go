// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
)

// Registry owns the authoritative set of active commands.
//
// Load and Unload are all-or-nothing per batch: the full resulting set is
// published to the Catalog first, and only committed locally once the publish
// succeeds. Mutations are serialized; lookups never wait on a publish.
type Registry struct {
	catalog Catalog
	backoff func() retry.Backoff
	logger  *slog.Logger

	mutate   sync.Mutex // serializes Load/Unload across validate, publish, commit
	mu       sync.RWMutex
	commands map[string]Command
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithCatalog sets the remote catalog that receives every published set.
// Without a catalog, publishes are no-ops.
func WithCatalog(c Catalog) RegistryOption {
	return func(r *Registry) {
		r.catalog = c
	}
}

// WithPublishBackoff overrides the retry policy for catalog publishes.
func WithPublishBackoff(b func() retry.Backoff) RegistryOption {
	return func(r *Registry) {
		r.backoff = b
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// DefaultPublishBackoff retries a publish up to 3 times with exponential delay.
func DefaultPublishBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))
}

// NewRegistry creates an empty command registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		catalog:  NopCatalog{},
		backoff:  DefaultPublishBackoff,
		logger:   slog.Default(),
		commands: make(map[string]Command),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Load validates cmds against each other and the existing set, publishes the
// merged set, and commits it. On any error the registry is unchanged.
func (r *Registry) Load(ctx context.Context, cmds []Command) error {
	r.mutate.Lock()
	defer r.mutate.Unlock()

	next := r.snapshot()
	for _, c := range cmds {
		if err := validate(c); err != nil {
			return err
		}
		if existing, ok := next[c.Name]; ok {
			return ErrDuplicateCommand(c.Name, c.Module, existing.Module)
		}
		next[c.Name] = c
	}

	if len(cmds) == 0 {
		return nil
	}

	if err := r.publish(ctx, "load", next); err != nil {
		return err
	}
	r.commit(next)

	r.logger.InfoContext(ctx, "commands loaded",
		"loaded", len(cmds),
		"total", len(next))
	return nil
}

// Unload removes cmds from the registry and publishes the remaining set.
// Commands that are not registered are ignored.
func (r *Registry) Unload(ctx context.Context, cmds []Command) error {
	r.mutate.Lock()
	defer r.mutate.Unlock()

	next := r.snapshot()
	removed := 0
	for _, c := range cmds {
		if _, ok := next[c.Name]; ok {
			delete(next, c.Name)
			removed++
		}
	}

	if removed == 0 {
		return nil
	}

	if err := r.publish(ctx, "unload", next); err != nil {
		return err
	}
	r.commit(next)

	r.logger.InfoContext(ctx, "commands unloaded",
		"unloaded", removed,
		"total", len(next))
	return nil
}

// Query returns a snapshot of commands matching pred, sorted by name.
// A nil pred matches everything.
func (r *Registry) Query(pred func(Command) bool) []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		if pred == nil || pred(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// All returns every registered command, sorted by name.
func (r *Registry) All() []Command {
	return r.Query(nil)
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.commands[name]
	return c, ok
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

func (r *Registry) snapshot() map[string]Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	next := make(map[string]Command, len(r.commands))
	for name, c := range r.commands {
		next[name] = c
	}
	return next
}

func (r *Registry) commit(next map[string]Command) {
	r.mu.Lock()
	r.commands = next
	r.mu.Unlock()
	RegisteredCommands.Set(float64(len(next)))
}

func (r *Registry) publish(ctx context.Context, op string, set map[string]Command) error {
	specs := make([]Spec, 0, len(set))
	for _, c := range set {
		specs = append(specs, c.Spec())
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })

	attempt := 0
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		attempt++
		if err := r.catalog.SetCommands(ctx, specs); err != nil {
			if ctx.Err() != nil {
				return err
			}
			r.logger.WarnContext(ctx, "command catalog publish failed",
				"operation", op,
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		RecordCatalogPublish(op, StatusError)
		return ErrCatalogPublish(op, len(specs), err)
	}

	RecordCatalogPublish(op, StatusSuccess)
	return nil
}
