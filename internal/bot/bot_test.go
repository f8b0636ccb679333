// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package bot_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/onebot-dev/onebot/internal/bot"
	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/gateway/gatewaytest"
	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/internal/modules/utility"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

// echoModule records every message it hears once activated.
type echoModule struct {
	host module.Host

	mu    sync.Mutex
	heard []string
	panic bool
}

func (m *echoModule) Name() string        { return "echo" }
func (m *echoModule) Description() string { return "echo" }

func (m *echoModule) Commands(context.Context) ([]command.Command, error) {
	return []command.Command{{
		Name:        "echo",
		Description: "Repeat the arguments",
		Usage:       "echo <text>",
		Handler: func(ctx context.Context, inv *command.Invocation) error {
			return inv.Reply.Reply(ctx, inv.Args)
		},
	}}, nil
}

func (m *echoModule) OnLoad(context.Context) error {
	m.host.OnMessage(func(_ context.Context, msg gateway.Message) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.panic {
			panic("listener exploded")
		}
		m.heard = append(m.heard, msg.Content)
	})
	return nil
}

func (m *echoModule) Heard() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.heard...)
}

type harness struct {
	gw      *gatewaytest.Gateway
	catalog *command.MemoryCatalog
	bot     *bot.Bot
	echo    *echoModule
	done    chan error
}

func start(t *testing.T, opts ...bot.Option) *harness {
	t.Helper()

	h := &harness{
		gw:      gatewaytest.New(),
		catalog: &command.MemoryCatalog{},
		done:    make(chan error, 1),
	}

	src := module.NewStaticSource().
		Add(utility.Manifest, utility.Factory).
		Add(module.Manifest{Name: "echo", Version: "0.1.0", Intents: []string{"GuildMessages", "MessageContent"}},
			func(host module.Host) (module.Module, error) {
				h.echo = &echoModule{host: host}
				return h.echo, nil
			})

	registry := command.NewRegistry(command.WithCatalog(h.catalog))
	h.bot = bot.New(h.gw, registry, src, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.done <- h.bot.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-h.done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("bot did not stop")
		}
	})

	require.Eventually(t, h.bot.Loader().Status().FullyLoaded, 2*time.Second, 5*time.Millisecond)
	return h
}

// replies returns the contents sent to channel, in order.
func (h *harness) replies(channel string) []string {
	var out []string
	for _, s := range h.gw.Sent() {
		if s.Ref.ChannelID == channel {
			out = append(out, s.Msg.Content)
		}
	}
	return out
}

func (h *harness) waitReplies(t *testing.T, channel string, n int) []string {
	t.Helper()
	require.Eventually(t, func() bool { return len(h.replies(channel)) >= n }, 2*time.Second, 5*time.Millisecond)
	return h.replies(channel)
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun_ConnectsWithIntentUnion(t *testing.T) {
	h := start(t)

	assert.Equal(t, []string{"GuildMessages", "Guilds", "MessageContent"}, h.gw.Intents())
	assert.Equal(t, []string{"echo", "utility"}, h.bot.Loader().LoadedModules())
	assert.Equal(t, 1, h.catalog.Publishes())
	assert.Equal(t, []string{"echo", "help", "ping"}, h.catalog.Current())
}

func TestRun_DispatchesCommands(t *testing.T) {
	h := start(t)

	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "u1", Content: "/ping"})
	assert.Equal(t, []string{"Pong!"}, h.waitReplies(t, "c1", 1))

	h.gw.Message(gateway.Message{ChannelID: "c2", AuthorID: "u1", Content: "/echo hello  there"})
	assert.Equal(t, []string{"hello  there"}, h.waitReplies(t, "c2", 1))
}

func TestRun_UnknownCommandGetsUserMessage(t *testing.T) {
	h := start(t)

	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "u1", Content: "/nope"})
	assert.Equal(t, []string{"Unknown command. Try /help."}, h.waitReplies(t, "c1", 1))
}

func TestRun_ListenersHearEveryMessage(t *testing.T) {
	h := start(t)

	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "u1", Content: "just chatting"})
	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "bot", AuthorBot: true, Content: "/ping"})

	require.Eventually(t, func() bool { return len(h.echo.Heard()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"just chatting", "/ping"}, h.echo.Heard())

	// Bots never run commands.
	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "u1", Content: "/ping"})
	assert.Equal(t, []string{"Pong!"}, h.waitReplies(t, "c1", 1))
}

func TestRun_ReconnectReadyIsIgnored(t *testing.T) {
	h := start(t)

	h.gw.Ready()
	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "u1", Content: "/ping"})
	h.waitReplies(t, "c1", 1)

	assert.Equal(t, 1, h.catalog.Publishes())
	assert.Len(t, h.catalog.Current(), 3)
}

func TestRun_ListenerPanicIsContained(t *testing.T) {
	h := start(t)
	h.echo.mu.Lock()
	h.echo.panic = true
	h.echo.mu.Unlock()

	h.gw.Message(gateway.Message{ChannelID: "c1", AuthorID: "u1", Content: "/ping"})
	assert.Equal(t, []string{"Pong!"}, h.waitReplies(t, "c1", 1))
}

func TestRun_StopsWhenEventStreamCloses(t *testing.T) {
	gw := gatewaytest.New()
	b := bot.New(gw, command.NewRegistry(), module.NewStaticSource())

	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background()) }()

	require.Eventually(t, b.Loader().Status().FullyLoaded, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, gw.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestHost_Accessors(t *testing.T) {
	h := start(t)

	mod, ok := h.bot.Module("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", mod.Name())

	_, ok = h.bot.Module("missing")
	assert.False(t, ok)

	assert.Same(t, h.gw, h.bot.Gateway())
	assert.Len(t, h.bot.Commands().Query(command.OwnedBy("utility")), 2)
	assert.Equal(t, []string{"echo", "utility"}, h.bot.Modules().LoadedModules())
}

func TestRestart(t *testing.T) {
	b := bot.New(gatewaytest.New(), command.NewRegistry(), module.NewStaticSource())
	errutil.AssertErrorCode(t, b.Restart(context.Background()), "RESTART_UNSUPPORTED")

	var calls int
	b = bot.New(gatewaytest.New(), command.NewRegistry(), module.NewStaticSource(),
		bot.WithRestarter(bot.RestarterFunc(func(context.Context) error {
			calls++
			return nil
		})))
	require.NoError(t, b.Restart(context.Background()))
	assert.Equal(t, 1, calls)
}
