// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package loader instantiates modules, registers their commands, and drives
// their activation once the gateway is ready.
package loader

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/fanout"
	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

var tracer = otel.Tracer("onebot/loader")

// Default timeouts.
const (
	DefaultActivationTimeout = 30 * time.Second
	DefaultCommandsTimeout   = 30 * time.Second
)

// Compile-time interface check.
var _ module.Manager = (*Loader)(nil)

// ActivationResult is the outcome of one module's OnLoad.
type ActivationResult struct {
	Module string
	Err    error
}

type loaded struct {
	mod   module.Module
	state State
	seq   int
}

// Loader owns the loaded-module map.
//
// The map is only mutated between fan-out phases, under mu. Lifecycle
// operations (HandleReady, LoadModule, UnloadModule) are serialized by
// lifecycle so an operator action cannot interleave with startup.
type Loader struct {
	source   module.Source
	registry *command.Registry
	host     module.Host
	status   *Status
	logger   *slog.Logger

	activationTimeout time.Duration
	commandsTimeout   time.Duration

	lifecycle sync.Mutex
	ready     bool

	mu      sync.RWMutex
	modules map[string]*loaded
	seq     int
}

// Option configures a Loader.
type Option func(*Loader)

// WithStatus sets the load status gate. By default each Loader gets its own.
func WithStatus(s *Status) Option {
	return func(l *Loader) {
		l.status = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithActivationTimeout bounds each OnLoad call. Zero disables the bound.
func WithActivationTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.activationTimeout = d
	}
}

// WithCommandsTimeout bounds each Commands call. Zero disables the bound.
func WithCommandsTimeout(d time.Duration) Option {
	return func(l *Loader) {
		l.commandsTimeout = d
	}
}

// New creates a Loader. host is handed to every module factory.
func New(source module.Source, registry *command.Registry, host module.Host, opts ...Option) *Loader {
	l := &Loader{
		source:            source,
		registry:          registry,
		host:              host,
		status:            NewStatus(),
		logger:            slog.Default(),
		activationTimeout: DefaultActivationTimeout,
		commandsTimeout:   DefaultCommandsTimeout,
		modules:           make(map[string]*loaded),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Status returns the load status gate.
func (l *Loader) Status() *Status {
	return l.status
}

// LoadModules instantiates every module the source provides and marks the
// modules flag. Modules that fail to instantiate are logged and skipped; a
// second module claiming an existing name is skipped with a warning.
func (l *Loader) LoadModules(ctx context.Context) error {
	entries, err := l.source.Entries(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		mod, err := l.instantiate(ctx, e.Name())
		if err != nil {
			errutil.LogErrorContext(ctx, l.logger, "module instantiation failed", err, "module", e.Name())
			continue
		}

		if !l.add(mod, StateInstantiated) {
			l.logger.WarnContext(ctx, "duplicate module name, skipping", "module", mod.Name())
			continue
		}
		l.logger.DebugContext(ctx, "module instantiated", "module", mod.Name())
	}

	l.logger.InfoContext(ctx, "modules loaded", "count", len(l.LoadedModules()))
	l.status.SetModulesLoaded()
	return nil
}

// HandleReady reacts to a gateway Ready event. The first call registers the
// commands of every loaded module in one registry batch, marks the commands
// flag, and activates the modules. Later calls, caused by reconnects, do
// nothing.
//
// A rejected batch leaves the registry unchanged and is returned; modules
// are still activated.
func (l *Loader) HandleReady(ctx context.Context) (err error) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if l.ready {
		l.logger.DebugContext(ctx, "gateway ready again, modules already active")
		return nil
	}
	l.ready = true

	ctx, span := tracer.Start(ctx, "loader.ready")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	err = l.registerAll(ctx)
	l.onReady(ctx)
	return err
}

func (l *Loader) registerAll(ctx context.Context) error {
	mods := l.modulesIn(func(s State) bool { return s == StateInstantiated })

	results := fanout.Run(ctx, mods, fanout.Options{Timeout: l.commandsTimeout},
		func(ctx context.Context, m module.Module) ([]command.Command, error) {
			return m.Commands(ctx)
		})

	var batch []command.Command
	var contributors []string
	for i, r := range results {
		name := mods[i].Name()
		if r.Err != nil {
			errutil.LogErrorContext(ctx, l.logger, "module commands failed", module.ErrActivation(name, r.Err), "module", name)
			l.setState(name, StateActivationFailed)
			ModuleActivations.WithLabelValues(name, OutcomeFailure).Inc()
			continue
		}
		batch = append(batch, owned(name, r.Value)...)
		contributors = append(contributors, name)
	}

	if err := l.registry.Load(ctx, batch); err != nil {
		errutil.LogErrorContext(ctx, l.logger, "command registration failed", err)
		return err
	}

	for _, name := range contributors {
		l.setState(name, StateCommandsRegistered)
	}
	l.logger.InfoContext(ctx, "commands loaded", "count", len(batch))
	l.status.SetCommandsLoaded()
	return nil
}

// OnReady runs OnLoad concurrently on every module still waiting for
// activation and returns one result per module. A failing module is logged
// and marked failed; it never affects its siblings.
func (l *Loader) OnReady(ctx context.Context) []ActivationResult {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()
	return l.onReady(ctx)
}

func (l *Loader) onReady(ctx context.Context) []ActivationResult {
	mods := l.modulesIn(State.pending)

	results := fanout.Run(ctx, mods, fanout.Options{Timeout: l.activationTimeout},
		func(ctx context.Context, m module.Module) (struct{}, error) {
			return struct{}{}, m.OnLoad(ctx)
		})

	out := make([]ActivationResult, len(mods))
	for i, r := range results {
		name := mods[i].Name()
		out[i] = ActivationResult{Module: name, Err: l.recordActivation(ctx, name, r.Err)}
	}
	return out
}

func (l *Loader) recordActivation(ctx context.Context, name string, err error) error {
	if err != nil {
		err = module.ErrActivation(name, err)
		errutil.LogErrorContext(ctx, l.logger, "module activation failed", err, "module", name)
		l.setState(name, StateActivationFailed)
		ModuleActivations.WithLabelValues(name, OutcomeFailure).Inc()
		return err
	}
	l.logger.InfoContext(ctx, "module activated", "module", name)
	l.setState(name, StateActivated)
	ModuleActivations.WithLabelValues(name, OutcomeSuccess).Inc()
	return nil
}

// LoadModule loads a single module on operator request. It returns false
// when the module is already loaded. The module's commands are registered
// before it joins the map; once the gateway is ready it is also activated,
// and an activation error is returned alongside true.
func (l *Loader) LoadModule(ctx context.Context, name string) (changed bool, err error) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	if _, ok := l.Module(name); ok {
		return false, nil
	}

	ctx, span := tracer.Start(ctx, "loader.load_module",
		trace.WithAttributes(attribute.String("module.name", name)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	mod, err := l.instantiate(ctx, name)
	if err != nil {
		return false, err
	}

	cmds, err := l.collect(ctx, mod)
	if err != nil {
		return false, module.ErrActivation(name, err)
	}
	if err := l.registry.Load(ctx, owned(name, cmds)); err != nil {
		return false, err
	}

	l.add(mod, StateCommandsRegistered)
	l.logger.InfoContext(ctx, "module loaded", "module", name, "commands", len(cmds))

	if !l.ready {
		return true, nil
	}

	return true, l.recordActivation(ctx, name, l.activate(ctx, mod))
}

// activate runs one module's OnLoad with the same timeout and panic
// recovery the ready fan-out applies.
func (l *Loader) activate(ctx context.Context, mod module.Module) error {
	results := fanout.Run(ctx, []module.Module{mod}, fanout.Options{Timeout: l.activationTimeout},
		func(ctx context.Context, m module.Module) (struct{}, error) {
			return struct{}{}, m.OnLoad(ctx)
		})
	return results[0].Err
}

func (l *Loader) collect(ctx context.Context, mod module.Module) ([]command.Command, error) {
	results := fanout.Run(ctx, []module.Module{mod}, fanout.Options{Timeout: l.commandsTimeout},
		func(ctx context.Context, m module.Module) ([]command.Command, error) {
			return m.Commands(ctx)
		})
	return results[0].Value, results[0].Err
}

// UnloadModule removes a loaded module and its commands. It returns false
// when the module is not loaded. If the registry cannot publish the
// reduced set the module stays loaded.
func (l *Loader) UnloadModule(ctx context.Context, name string) (bool, error) {
	l.lifecycle.Lock()
	defer l.lifecycle.Unlock()

	mod, ok := l.Module(name)
	if !ok {
		return false, nil
	}

	cmds := l.registry.Query(command.OwnedBy(name))
	if err := l.registry.Unload(ctx, cmds); err != nil {
		return false, err
	}

	if u, ok := mod.(module.Unloader); ok {
		if err := u.OnUnload(ctx); err != nil {
			errutil.LogErrorContext(ctx, l.logger, "module unload hook failed", err, "module", name)
		}
	}

	l.mu.Lock()
	delete(l.modules, name)
	LoadedModules.Set(float64(len(l.modules)))
	l.mu.Unlock()

	l.logger.InfoContext(ctx, "module unloaded", "module", name, "commands", len(cmds))
	return true, nil
}

// UnloadedModules lists the names the source provides that are not loaded.
// Each candidate is instantiated transiently to learn its name, which is
// why factories must be free of side effects.
func (l *Loader) UnloadedModules(ctx context.Context) ([]string, error) {
	entries, err := l.source.Entries(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		candidate, err := l.instantiate(ctx, e.Name())
		if err != nil {
			l.logger.WarnContext(ctx, "skipping module that cannot be instantiated", "module", e.Name(), "error", err)
			continue
		}
		if _, ok := l.Module(candidate.Name()); !ok {
			names = append(names, candidate.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LoadedModules returns the names of loaded modules, sorted.
func (l *Loader) LoadedModules() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.modules))
	for name := range l.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Module looks up a loaded module.
func (l *Loader) Module(name string) (module.Module, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.modules[name]
	if !ok {
		return nil, false
	}
	return e.mod, true
}

// State returns the lifecycle state of a loaded module.
func (l *Loader) State(name string) (State, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.modules[name]
	if !ok {
		return StateDiscovered, false
	}
	return e.state, true
}

func (l *Loader) instantiate(ctx context.Context, name string) (module.Module, error) {
	factory, err := l.source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	mod, err := factory(l.host)
	if err != nil {
		return nil, module.ErrInstantiation(name, err)
	}
	if mod == nil {
		return nil, module.ErrInstantiation(name, errNilModule)
	}
	if mod.Name() != name {
		return nil, module.ErrInstantiation(name, errNameMismatch(mod.Name()))
	}
	return mod, nil
}

func (l *Loader) add(mod module.Module, state State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.modules[mod.Name()]; dup {
		return false
	}
	l.seq++
	l.modules[mod.Name()] = &loaded{mod: mod, state: state, seq: l.seq}
	LoadedModules.Set(float64(len(l.modules)))
	return true
}

func (l *Loader) setState(name string, s State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.modules[name]; ok {
		e.state = s
	}
}

// modulesIn returns the loaded modules whose state matches, in load order.
func (l *Loader) modulesIn(match func(State) bool) []module.Module {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]*loaded, 0, len(l.modules))
	for _, e := range l.modules {
		if match(e.state) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	mods := make([]module.Module, len(entries))
	for i, e := range entries {
		mods[i] = e.mod
	}
	return mods
}

// owned stamps the owner on every command so unload-by-owner finds them.
func owned(name string, cmds []command.Command) []command.Command {
	out := make([]command.Command, len(cmds))
	for i, c := range cmds {
		c.Module = name
		out[i] = c
	}
	return out
}
