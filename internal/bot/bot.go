// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package bot connects the gateway to the module loader and the command
// dispatcher. Bot is the module.Host every module is constructed with.
package bot

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/loader"
	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/internal/observability"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

// Restarter restarts the whole process.
type Restarter interface {
	Restart(ctx context.Context) error
}

// RestarterFunc adapts a function to Restarter.
type RestarterFunc func(ctx context.Context) error

// Restart calls f.
func (f RestarterFunc) Restart(ctx context.Context) error {
	return f(ctx)
}

// Option configures a Bot.
type Option func(*Bot)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithRestarter sets what the restart action does. Without one, restarts
// fail with RESTART_UNSUPPORTED.
func WithRestarter(r Restarter) Option {
	return func(b *Bot) {
		b.restarter = r
	}
}

// WithLoaderOptions passes options through to the module loader.
func WithLoaderOptions(opts ...loader.Option) Option {
	return func(b *Bot) {
		b.loaderOpts = append(b.loaderOpts, opts...)
	}
}

// WithUsageReport logs a usage summary once everything is loaded.
func WithUsageReport(enabled bool) Option {
	return func(b *Bot) {
		b.usageReport = enabled
	}
}

// Bot is the running host.
type Bot struct {
	gw         gateway.Gateway
	source     module.Source
	registry   *command.Registry
	dispatcher *command.Dispatcher
	loader     *loader.Loader
	listeners  *listeners
	restarter  Restarter
	logger     *slog.Logger

	loaderOpts  []loader.Option
	usageReport bool

	wg sync.WaitGroup
}

// Compile-time interface check.
var _ module.Host = (*Bot)(nil)

// New creates a Bot over gw whose modules come from source.
func New(gw gateway.Gateway, registry *command.Registry, source module.Source, opts ...Option) *Bot {
	b := &Bot{
		gw:         gw,
		source:     source,
		registry:   registry,
		dispatcher: command.NewDispatcher(registry),
		listeners:  newListeners(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}

	loaderOpts := append([]loader.Option{loader.WithLogger(b.logger)}, b.loaderOpts...)
	b.loader = loader.New(source, registry, b, loaderOpts...)
	b.loader.Status().OnFullyLoaded(b.fullyLoaded)
	return b
}

// Loader returns the module loader.
func (b *Bot) Loader() *loader.Loader {
	return b.loader
}

// Gateway implements module.Host.
func (b *Bot) Gateway() gateway.Gateway {
	return b.gw
}

// OnMessage implements module.Host.
func (b *Bot) OnMessage(fn module.MessageHandler) func() {
	return b.listeners.subscribe(fn)
}

// Module implements module.Host.
func (b *Bot) Module(name string) (module.Module, bool) {
	return b.loader.Module(name)
}

// Modules implements module.Host.
func (b *Bot) Modules() module.Manager {
	return b.loader
}

// Commands implements module.Host.
func (b *Bot) Commands() module.CommandQuery {
	return b.registry
}

// Restart implements module.Host.
func (b *Bot) Restart(ctx context.Context) error {
	if b.restarter == nil {
		return oops.In("bot").Code("RESTART_UNSUPPORTED").Errorf("no restarter configured")
	}
	b.logger.InfoContext(ctx, "restart requested")
	return b.restarter.Restart(ctx)
}

// Run instantiates the modules, connects with the union of their intents,
// and processes gateway events until ctx is cancelled or the event stream
// closes. It waits for in-flight handlers before returning.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.loader.LoadModules(ctx); err != nil {
		return oops.In("bot").Wrapf(err, "load modules")
	}

	intents, err := module.Intents(ctx, b.source)
	if err != nil {
		return oops.In("bot").Wrapf(err, "collect intents")
	}

	if err := b.gw.Connect(ctx, intents); err != nil {
		return oops.In("bot").With("intents", intents).Wrapf(err, "connect gateway")
	}

	defer b.wg.Wait()

	events := b.gw.Events()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				b.logger.InfoContext(ctx, "gateway event stream closed")
				return nil
			}
			b.handle(ctx, ev)
		}
	}
}

func (b *Bot) handle(ctx context.Context, ev gateway.Event) {
	observability.RecordGatewayEvent(gateway.Name(ev))
	switch e := ev.(type) {
	case gateway.Ready:
		b.logger.InfoContext(ctx, "logged in", "user", e.User, "session", e.Session)
		// Ready runs inline so no message is handled before activation.
		if err := b.loader.HandleReady(ctx); err != nil {
			errutil.LogErrorContext(ctx, b.logger, "ready handling failed", err)
		}
	case gateway.MessageCreate:
		b.message(ctx, e.Message)
	default:
		b.logger.DebugContext(ctx, "ignoring gateway event", "event", gateway.Name(ev))
	}
}

func (b *Bot) message(ctx context.Context, msg gateway.Message) {
	for _, fn := range b.listeners.snapshot() {
		b.spawn(ctx, "message listener", func(ctx context.Context) {
			fn(ctx, msg)
		})
	}

	if msg.AuthorBot || !strings.HasPrefix(strings.TrimSpace(msg.Content), command.Prefix) {
		return
	}
	b.spawn(ctx, "command", func(ctx context.Context) {
		b.dispatch(ctx, msg)
	})
}

// spawn runs fn in a tracked goroutine. A panic is logged, never fatal.
func (b *Bot) spawn(ctx context.Context, what string, fn func(ctx context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.logger.ErrorContext(ctx, "handler panicked", "handler", what, "panic", r)
			}
		}()
		fn(ctx)
	}()
}

func (b *Bot) dispatch(ctx context.Context, msg gateway.Message) {
	inv := &command.Invocation{
		ChannelID: msg.ChannelID,
		AuthorID:  msg.AuthorID,
		Reply: command.ReplierFunc(func(ctx context.Context, text string) error {
			_, err := b.gw.Send(ctx, msg.ChannelID, gateway.Text(text))
			return err
		}),
	}

	err := b.dispatcher.Dispatch(ctx, msg.Content, inv)
	if err == nil || errutil.Code(err) == command.CodeNotCommand {
		return
	}

	if _, sendErr := b.gw.Send(ctx, msg.ChannelID, gateway.Text(command.UserMessage(err))); sendErr != nil {
		errutil.LogErrorContext(ctx, b.logger, "command error reply failed", sendErr,
			"channel_id", msg.ChannelID)
	}
}

func (b *Bot) fullyLoaded() {
	names := b.loader.LoadedModules()
	b.logger.Info("all modules and commands loaded", "modules", len(names), "commands", b.registry.Len())

	if b.usageReport {
		b.logger.Info("usage data",
			"module_count", len(names),
			"module_names", names,
		)
	}
}
