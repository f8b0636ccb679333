// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package music is the music-link module: it watches chat for music links
// and answers with a composite card built from every configured backend.
package music

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/internal/music"
	"github.com/onebot-dev/onebot/internal/music/deezer"
	"github.com/onebot-dev/onebot/internal/music/fixture"
	"github.com/onebot-dev/onebot/internal/music/spotify"
	"github.com/onebot-dev/onebot/internal/music/youtube"
)

// Name is the module name.
const Name = "music"

// Manifest describes the module.
var Manifest = module.Manifest{
	Name:        Name,
	Version:     "1.0.0",
	Type:        module.TypeBuiltin,
	Description: "The music commands for onebot",
	Intents:     []string{"Guilds", "GuildMessages", "MessageContent"},
}

// Config configures the module.
type Config struct {
	AdapterTimeout time.Duration // per adapter call, primary and secondary; zero disables
	Fixtures       string        // YAML catalog path, empty for none
	CacheAddr      string        // Redis address, empty disables caching
	CacheTTL       time.Duration
}

// Register makes the module available to the loader.
func Register(cfg Config) {
	module.RegisterBuiltin(Manifest, Factory(cfg))
}

// Factory returns the module factory for cfg. Construction only records
// its inputs; adapters are loaded by Commands.
func Factory(cfg Config) module.Factory {
	return func(host module.Host) (module.Module, error) {
		return &Module{
			cfg:    cfg,
			host:   host,
			logger: slog.Default().With("module", Name),
		}, nil
	}
}

// Module is the music module.
type Module struct {
	cfg    Config
	host   module.Host
	logger *slog.Logger

	mu       sync.Mutex
	pipeline *music.Pipeline
	cache    *music.RedisCache
	remove   func()
}

// Compile-time interface checks.
var (
	_ module.Module   = (*Module)(nil)
	_ module.Unloader = (*Module)(nil)
)

// Name implements module.Module.
func (m *Module) Name() string { return Name }

// Description implements module.Module.
func (m *Module) Description() string { return Manifest.Description }

// Commands loads the adapters and returns the songinfo command.
func (m *Module) Commands(ctx context.Context) ([]command.Command, error) {
	if _, err := m.loadAdapters(ctx); err != nil {
		return nil, err
	}
	return []command.Command{{
		Name:        "songinfo",
		Module:      Name,
		Description: "Show a song across every music service",
		Usage:       "songinfo <url>",
		Options:     []command.Option{{Name: "url", Description: "Link to a song", Required: true}},
		Handler:     m.songInfo,
	}}, nil
}

// OnLoad subscribes the pipeline to inbound messages.
func (m *Module) OnLoad(ctx context.Context) error {
	p, err := m.loadAdapters(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.remove == nil {
		m.remove = m.host.OnMessage(p.HandleMessage)
	}
	return nil
}

// OnUnload stops listening and releases the cache connection.
func (m *Module) OnUnload(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.remove != nil {
		m.remove()
		m.remove = nil
	}
	if m.cache != nil {
		err := m.cache.Close()
		m.cache = nil
		return err
	}
	return nil
}

// Pipeline returns the loaded pipeline, or nil before Commands or OnLoad.
func (m *Module) Pipeline() *music.Pipeline {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pipeline
}

func (m *Module) loadAdapters(ctx context.Context) (*music.Pipeline, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pipeline != nil {
		return m.pipeline, nil
	}

	catalog, err := fixture.Load(m.cfg.Fixtures)
	if err != nil {
		return nil, err
	}

	var cache music.Cache
	if m.cfg.CacheAddr != "" {
		rc, err := music.DialRedisCache(ctx, m.cfg.CacheAddr)
		if err != nil {
			return nil, err
		}
		m.cache = rc
		cache = rc
	}

	ttl := m.cfg.CacheTTL
	if ttl == 0 {
		ttl = music.DefaultCacheTTL
	}

	builders := []struct {
		kind music.Kind
		new  func(music.Client) (*music.LinkAdapter, error)
	}{
		{music.KindSpotify, spotify.New},
		{music.KindYouTube, youtube.New},
		{music.KindDeezer, deezer.New},
	}

	adapters := make([]music.Adapter, 0, len(builders))
	for _, b := range builders {
		client := music.CachedClient(b.kind, catalog.Client(b.kind), cache, ttl)
		a, err := b.new(client)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
		m.logger.InfoContext(ctx, "loaded adapter", "adapter", a.Name())
	}

	m.pipeline = music.NewPipeline(adapters, m.host.Gateway(),
		music.WithAdapterTimeout(m.cfg.AdapterTimeout),
		music.WithLogger(m.logger))
	return m.pipeline, nil
}

func (m *Module) songInfo(ctx context.Context, inv *command.Invocation) error {
	link, ok := music.FindLink(inv.Args)
	if !ok {
		return command.ErrInvalidArgs("songinfo", "songinfo <url>")
	}

	p := m.Pipeline()
	handled, err := p.Process(ctx, inv.ChannelID, link)
	if err != nil {
		return err
	}
	if !handled {
		return inv.Reply.Reply(ctx, "No music service recognises that link.")
	}
	return nil
}
