// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package lua

import (
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/onebot-dev/onebot/internal/gateway"
)

// registerHostFuncs installs the onebot.* table into L.
//
//	onebot.log(level, message)  level is debug, info, warn or error
//	onebot.new_id()             returns a sortable unique id
func registerHostFuncs(L *lua.LState, module string, logger *slog.Logger) {
	mod := L.NewTable()
	L.SetField(mod, "log", L.NewFunction(func(L *lua.LState) int {
		level := L.CheckString(1)
		msg := L.CheckString(2)
		attrs := []any{"module", module}
		switch level {
		case "debug":
			logger.Debug(msg, attrs...)
		case "info":
			logger.Info(msg, attrs...)
		case "warn":
			logger.Warn(msg, attrs...)
		case "error":
			logger.Error(msg, attrs...)
		default:
			L.ArgError(1, "level must be debug, info, warn or error")
		}
		return 0
	}))
	L.SetField(mod, "new_id", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(gateway.NewID()))
		return 1
	}))
	L.SetGlobal("onebot", mod)
}
