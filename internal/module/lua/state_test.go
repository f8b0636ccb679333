// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package lua_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	modlua "github.com/onebot-dev/onebot/internal/module/lua"
)

func TestStateFactory_SafeLibraries(t *testing.T) {
	L, err := modlua.NewStateFactory().NewState(context.Background())
	require.NoError(t, err)
	defer L.Close()

	for _, lib := range []string{"string", "table", "math"} {
		assert.NotEqual(t, lua.LTNil, L.GetGlobal(lib).Type(), "%s should be loaded", lib)
	}
	for _, lib := range []string{"os", "io", "debug", "package"} {
		assert.Equal(t, lua.LTNil, L.GetGlobal(lib).Type(), "%s should be blocked", lib)
	}
	for _, fn := range []string{"dofile", "loadfile", "loadstring", "load"} {
		assert.Equal(t, lua.LTNil, L.GetGlobal(fn).Type(), "%s should be blocked", fn)
	}
}

func TestStateFactory_ContextCancelsExecution(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	L, err := modlua.NewStateFactory().NewState(ctx)
	require.NoError(t, err)
	defer L.Close()

	cancel()
	err = L.DoString(`while true do end`)
	assert.Error(t, err)
}
