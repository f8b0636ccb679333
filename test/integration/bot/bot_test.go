// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

//go:build integration

package bot_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	adminapi "github.com/onebot-dev/onebot/internal/admin"
	"github.com/onebot-dev/onebot/internal/bot"
	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/gateway/gatewaytest"
	"github.com/onebot-dev/onebot/internal/module"
	luamod "github.com/onebot-dev/onebot/internal/module/lua"
	"github.com/onebot-dev/onebot/internal/modules/admin"
	musicmod "github.com/onebot-dev/onebot/internal/modules/music"
	"github.com/onebot-dev/onebot/internal/modules/utility"
)

const catalog = `
spotify:
  - id: 4cOdK2wGLETKBW3PvgPWqT
    title: Never Gonna Give You Up
    artist: Rick Astley
    url: https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT
    duration_ms: 213573
youtube:
  - id: dQw4w9WgXcQ
    title: Never Gonna Give You Up
    artist: Rick Astley
    url: https://www.youtube.com/watch?v=dQw4w9WgXcQ
    duration_seconds: 212
deezer:
  - id: "1234"
    title: Never Gonna Give You Up
    artist: Rick Astley
    url: https://www.deezer.com/track/1234
`

const diceManifest = `name: dice
version: 1.0.0
type: lua
description: Dice rolls
intents: [GuildMessages]
lua:
  entry: main.lua
`

const diceScript = `
function commands()
  return {{ name = "flip", description = "Flip a coin" }}
end

function on_command(ctx)
  return "heads"
end
`

type env struct {
	gw      *gatewaytest.Gateway
	catalog *command.MemoryCatalog
	bot     *bot.Bot
	redis   *miniredis.Miniredis
	cancel  context.CancelFunc
	done    chan error
}

func startBot() *env {
	dir := GinkgoT().TempDir()

	fixtures := filepath.Join(dir, "music.yaml")
	Expect(os.WriteFile(fixtures, []byte(catalog), 0o600)).To(Succeed())

	modules := filepath.Join(dir, "modules")
	Expect(os.MkdirAll(filepath.Join(modules, "dice"), 0o750)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(modules, "dice", "module.yaml"), []byte(diceManifest), 0o600)).To(Succeed())
	Expect(os.WriteFile(filepath.Join(modules, "dice", "main.lua"), []byte(diceScript), 0o600)).To(Succeed())

	e := &env{
		gw:      gatewaytest.New(),
		catalog: &command.MemoryCatalog{},
		redis:   miniredis.NewMiniRedis(),
		done:    make(chan error, 1),
	}
	Expect(e.redis.Start()).To(Succeed())

	builtins := module.NewStaticSource().
		Add(utility.Manifest, utility.Factory).
		Add(admin.Manifest, admin.Factory(admin.Config{Operators: []string{"op"}})).
		Add(musicmod.Manifest, musicmod.Factory(musicmod.Config{
			AdapterTimeout: 2 * time.Second,
			Fixtures:       fixtures,
			CacheAddr:      e.redis.Addr(),
			CacheTTL:       time.Hour,
		}))
	src := module.Union(builtins, module.NewDirSource(modules, module.WithRuntime(module.TypeLua, luamod.Runtime)))

	e.bot = bot.New(e.gw, command.NewRegistry(command.WithCatalog(e.catalog)), src)

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go func() { e.done <- e.bot.Run(ctx) }()

	Eventually(e.bot.Loader().Status().FullyLoaded).WithTimeout(5 * time.Second).Should(BeTrue())
	return e
}

func (e *env) stop() {
	e.cancel()
	Eventually(e.done).WithTimeout(5 * time.Second).Should(Receive(BeNil()))
	e.redis.Close()
}

func (e *env) say(channel, author, content string) {
	e.gw.Message(gateway.Message{ChannelID: channel, AuthorID: author, AuthorName: author, Content: content})
}

func (e *env) replies(channel string) func() []string {
	return func() []string {
		var out []string
		for _, s := range e.gw.Sent() {
			if s.Ref.ChannelID == channel {
				out = append(out, s.Msg.Content)
			}
		}
		return out
	}
}

var _ = Describe("Bot with builtin and scripted modules", func() {
	var e *env

	BeforeEach(func() {
		e = startBot()
	})

	AfterEach(func() {
		e.stop()
	})

	It("connects with the union of every manifest's intents", func() {
		Expect(e.gw.Intents()).To(Equal([]string{"GuildMessages", "Guilds", "MessageContent"}))
	})

	It("publishes one merged command set", func() {
		Expect(e.catalog.Publishes()).To(Equal(1))
		Expect(e.catalog.Current()).To(ConsistOf(
			"flip", "help", "load", "modules", "ping", "restart", "songinfo", "unload"))
	})

	It("routes commands to builtin and Lua modules", func() {
		e.say("c1", "u1", "/ping")
		Eventually(e.replies("c1")).Should(Equal([]string{"Pong!"}))

		e.say("c2", "u1", "/flip")
		Eventually(e.replies("c2")).Should(Equal([]string{"heads"}))
	})

	It("refuses admin commands from non-operators", func() {
		e.say("c1", "u1", "/unload music")
		Eventually(e.replies("c1")).Should(Equal([]string{"You are not allowed to do that."}))
		Expect(e.bot.Loader().LoadedModules()).To(ContainElement("music"))
	})

	It("unloads and reloads modules on operator request", func() {
		e.say("c1", "op", "/unload dice")
		Eventually(e.replies("c1")).Should(Equal([]string{"Unloaded dice."}))
		Expect(e.bot.Loader().LoadedModules()).NotTo(ContainElement("dice"))

		e.say("c2", "u1", "/flip")
		Eventually(e.replies("c2")).Should(HaveLen(1))
		Expect(e.replies("c2")()[0]).To(ContainSubstring("Unknown command"))

		e.say("c3", "op", "/load dice")
		Eventually(e.replies("c3")).Should(Equal([]string{"Loaded dice."}))

		e.say("c4", "u1", "/flip")
		Eventually(e.replies("c4")).Should(Equal([]string{"heads"}))
	})

	It("answers a music link with a provisional then a composite card", func() {
		e.say("music", "u1", "listen https://open.spotify.com/track/4cOdK2wGLETKBW3PvgPWqT")

		Eventually(func() []gateway.Embed {
			for _, s := range e.gw.Sent() {
				if s.Ref.ChannelID != "music" {
					continue
				}
				if latest, ok := e.gw.Latest(s.Ref); ok {
					return latest.Embeds
				}
			}
			return nil
		}).WithTimeout(5 * time.Second).Should(ContainElement(SatisfyAll(
			HaveField("Title", "Never Gonna Give You Up"),
			HaveField("Description", ContainSubstring("[YouTube](https://www.youtube.com/watch?v=dQw4w9WgXcQ)")),
			HaveField("Description", ContainSubstring("[Deezer](https://www.deezer.com/track/1234)")),
		)))

		Expect(e.redis.Keys()).NotTo(BeEmpty())
	})

	It("exposes module state over the admin API", func() {
		srv := httptest.NewServer(adminapi.Router(e.bot.Modules(), e.bot.Commands()))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/modules/")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var body adminapi.ModulesResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Loaded).To(Equal([]string{"admin", "dice", "music", "utility"}))

		resp2, err := http.Post(srv.URL+"/modules/dice/unload", "application/json", strings.NewReader(""))
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp2.Body.Close() }()
		Expect(resp2.StatusCode).To(Equal(http.StatusOK))
		Expect(e.bot.Loader().LoadedModules()).NotTo(ContainElement("dice"))
	})
})
