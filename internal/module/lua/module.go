// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package lua

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/module"
)

// Compile-time interface checks.
var (
	_ module.Runtime  = Runtime
	_ module.Module   = (*Module)(nil)
	_ module.Unloader = (*Module)(nil)
)

// Runtime reads and syntax-checks the entry script of a Lua module and
// returns its factory. It satisfies module.Runtime.
//
// A Lua module may define these globals:
//
//	commands()        returns a list of {name=, description=, usage=}
//	on_command(ctx)   ctx has name, args, channel_id, author_id; a string
//	                  result is sent as the reply
//	on_load()         returning false or raising fails activation
//	on_message(msg)   msg has id, channel_id, author_id, author_name,
//	                  author_bot, content; a string result is sent to
//	                  the channel
func Runtime(m *module.Manifest, dir string) (module.Factory, error) {
	if m.Lua == nil {
		return nil, oops.In("lua").With("module", m.Name).Errorf("manifest has no lua section")
	}

	entryPath := filepath.Join(dir, m.Lua.Entry)
	code, err := os.ReadFile(filepath.Clean(entryPath))
	if err != nil {
		return nil, oops.In("lua").
			With("module", m.Name).
			With("path", entryPath).
			Hint("failed to read entry file").
			Wrap(err)
	}

	states := NewStateFactory()
	L, err := states.NewState(context.Background())
	if err != nil {
		return nil, err
	}
	defer L.Close()

	if _, err := L.LoadString(string(code)); err != nil {
		return nil, oops.In("lua").
			With("module", m.Name).
			With("entry", m.Lua.Entry).
			Hint("syntax error").
			Wrap(err)
	}

	manifest := *m
	return func(host module.Host) (module.Module, error) {
		return &Module{
			manifest: manifest,
			code:     string(code),
			states:   states,
			host:     host,
			logger:   slog.Default().With("module", manifest.Name),
		}, nil
	}, nil
}

// Module is a loaded Lua module. Every call runs in a fresh state.
type Module struct {
	manifest module.Manifest
	code     string
	states   *StateFactory
	host     module.Host
	logger   *slog.Logger

	mu            sync.Mutex
	removeMessage func()
}

// Name implements module.Module.
func (m *Module) Name() string { return m.manifest.Name }

// Description implements module.Module.
func (m *Module) Description() string { return m.manifest.Description }

// Commands implements module.Module.
func (m *Module) Commands(ctx context.Context) ([]command.Command, error) {
	var cmds []command.Command
	err := m.run(ctx, "commands", func(L *lua.LState, fn lua.LValue) error {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
			return err
		}
		ret := L.Get(-1)
		L.Pop(1)

		list, ok := ret.(*lua.LTable)
		if !ok {
			return oops.Errorf("commands() returned %s, want table", ret.Type())
		}

		var bad error
		list.ForEach(func(_, v lua.LValue) {
			if bad != nil {
				return
			}
			t, ok := v.(*lua.LTable)
			if !ok {
				bad = oops.Errorf("commands() entry is %s, want table", v.Type())
				return
			}
			name := luaString(t, "name")
			cmds = append(cmds, command.Command{
				Name:        name,
				Module:      m.manifest.Name,
				Description: luaString(t, "description"),
				Usage:       luaString(t, "usage"),
				Handler:     m.commandHandler(),
			})
		})
		return bad
	})
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

// OnLoad implements module.Module. It runs on_load and subscribes
// on_message when the script defines it.
func (m *Module) OnLoad(ctx context.Context) error {
	err := m.run(ctx, "on_load", func(L *lua.LState, fn lua.LValue) error {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
			return err
		}
		ret := L.Get(-1)
		L.Pop(1)
		if ret == lua.LFalse {
			return oops.Errorf("on_load returned false")
		}
		return nil
	})
	if err != nil {
		return err
	}

	if !m.defines(ctx, "on_message") {
		return nil
	}

	remove := m.host.OnMessage(m.handleMessage)
	m.mu.Lock()
	m.removeMessage = remove
	m.mu.Unlock()
	return nil
}

// OnUnload implements module.Unloader.
func (m *Module) OnUnload(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeMessage != nil {
		m.removeMessage()
		m.removeMessage = nil
	}
	return nil
}

func (m *Module) commandHandler() command.Handler {
	return func(ctx context.Context, inv *command.Invocation) error {
		var reply string
		err := m.run(ctx, "on_command", func(L *lua.LState, fn lua.LValue) error {
			t := L.NewTable()
			L.SetField(t, "name", lua.LString(inv.Name))
			L.SetField(t, "args", lua.LString(inv.Args))
			L.SetField(t, "channel_id", lua.LString(inv.ChannelID))
			L.SetField(t, "author_id", lua.LString(inv.AuthorID))

			if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
				return err
			}
			if s, ok := L.Get(-1).(lua.LString); ok {
				reply = string(s)
			}
			L.Pop(1)
			return nil
		})
		if err != nil {
			return err
		}
		if reply == "" || inv.Reply == nil {
			return nil
		}
		return inv.Reply.Reply(ctx, reply)
	}
}

func (m *Module) handleMessage(ctx context.Context, msg gateway.Message) {
	var reply string
	err := m.run(ctx, "on_message", func(L *lua.LState, fn lua.LValue) error {
		t := L.NewTable()
		L.SetField(t, "id", lua.LString(msg.ID))
		L.SetField(t, "channel_id", lua.LString(msg.ChannelID))
		L.SetField(t, "author_id", lua.LString(msg.AuthorID))
		L.SetField(t, "author_name", lua.LString(msg.AuthorName))
		L.SetField(t, "content", lua.LString(msg.Content))
		L.SetField(t, "author_bot", lua.LBool(msg.AuthorBot))

		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, t); err != nil {
			return err
		}
		if s, ok := L.Get(-1).(lua.LString); ok {
			reply = string(s)
		}
		L.Pop(1)
		return nil
	})
	if err != nil {
		m.logger.Warn("lua on_message failed", "error", err)
		return
	}
	if reply == "" {
		return
	}
	if _, err := m.host.Gateway().Send(ctx, msg.ChannelID, gateway.Text(reply)); err != nil {
		m.logger.Warn("lua on_message reply failed", "error", err)
	}
}

// run executes the script in a fresh state and calls fn with the named
// global. A missing global is not an error and fn is not called.
func (m *Module) run(ctx context.Context, global string, fn func(L *lua.LState, g lua.LValue) error) error {
	L, err := m.load(ctx)
	if err != nil {
		return err
	}
	defer L.Close()

	g := L.GetGlobal(global)
	if g.Type() == lua.LTNil {
		return nil
	}
	if g.Type() != lua.LTFunction {
		return oops.In("lua").
			With("module", m.manifest.Name).
			With("operation", global).
			Errorf("%s is a %s, not a function", global, g.Type())
	}
	if err := fn(L, g); err != nil {
		return oops.In("lua").
			With("module", m.manifest.Name).
			With("operation", global).
			Wrap(err)
	}
	return nil
}

func (m *Module) defines(ctx context.Context, global string) bool {
	L, err := m.load(ctx)
	if err != nil {
		return false
	}
	defer L.Close()
	return L.GetGlobal(global).Type() == lua.LTFunction
}

func (m *Module) load(ctx context.Context) (*lua.LState, error) {
	L, err := m.states.NewState(ctx)
	if err != nil {
		return nil, err
	}
	registerHostFuncs(L, m.manifest.Name, m.logger)

	if err := L.DoString(m.code); err != nil {
		L.Close()
		return nil, oops.In("lua").
			With("module", m.manifest.Name).
			Hint("failed to load code").
			Wrap(err)
	}
	return L, nil
}

func luaString(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}
