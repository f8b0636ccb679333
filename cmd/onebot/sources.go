// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package main

import (
	"sync"

	"github.com/onebot-dev/onebot/internal/config"
	"github.com/onebot-dev/onebot/internal/module"
	luamod "github.com/onebot-dev/onebot/internal/module/lua"
	"github.com/onebot-dev/onebot/internal/modules/admin"
	musicmod "github.com/onebot-dev/onebot/internal/modules/music"
	"github.com/onebot-dev/onebot/internal/modules/utility"
)

var registerOnce sync.Once

// registerBuiltins adds the compiled-in modules to the builtin registry.
// The registry is process-wide, so only the first configuration counts.
func registerBuiltins(cfg *config.Config) {
	registerOnce.Do(func() {
		utility.Register()
		admin.Register(admin.Config{Operators: cfg.Env.Operators})
		musicmod.Register(musicmod.Config{
			AdapterTimeout: cfg.Music.AdapterTimeout,
			Fixtures:       cfg.Music.Fixtures,
			CacheAddr:      cfg.Music.Cache.Addr,
			CacheTTL:       cfg.Music.Cache.TTL,
		})
	})
}

// buildSource returns every module the bot may load: compiled-in modules
// first, then the modules directory, minus the disabled patterns.
func buildSource(cfg *config.Config) (module.Source, error) {
	registerBuiltins(cfg)

	dir := module.NewDirSource(cfg.Modules.Dir,
		module.WithRuntime(module.TypeLua, luamod.Runtime))

	return module.Exclude(module.Union(module.BuiltinSource{}, dir), cfg.Modules.Disabled...)
}
