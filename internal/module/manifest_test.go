// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package module_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onebot-dev/onebot/internal/module"
	"github.com/onebot-dev/onebot/pkg/errutil"
)

func TestParseManifest_Lua(t *testing.T) {
	yaml := `
name: dice
version: 1.2.0
type: lua
description: Roll dice
intents:
  - GuildMessages
lua:
  entry: main.lua
`
	m, err := module.ParseManifest([]byte(yaml))
	require.NoError(t, err)

	assert.Equal(t, "dice", m.Name)
	assert.Equal(t, "1.2.0", m.Version)
	assert.Equal(t, module.TypeLua, m.Type)
	assert.Equal(t, []string{"GuildMessages"}, m.Intents)
	require.NotNil(t, m.Lua)
	assert.Equal(t, "main.lua", m.Lua.Entry)
}

func TestParseManifest_Builtin(t *testing.T) {
	m, err := module.ParseManifest([]byte("name: music\nversion: 0.1.0\ntype: builtin\n"))
	require.NoError(t, err)
	assert.Equal(t, module.TypeBuiltin, m.Type)
	assert.Nil(t, m.Lua)
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errPart string
	}{
		{"empty", "", "empty"},
		{"bad yaml", "name: [", "invalid YAML"},
		{"missing name", "version: 1.0.0\ntype: builtin\n", "name"},
		{"uppercase name", "name: Dice\nversion: 1.0.0\ntype: builtin\n", "name"},
		{"trailing hyphen", "name: dice-\nversion: 1.0.0\ntype: builtin\n", "name"},
		{"too long", "name: " + strings.Repeat("a", 65) + "\nversion: 1.0.0\ntype: builtin\n", "64 characters"},
		{"missing version", "name: dice\ntype: builtin\n", "version is required"},
		{"non semver", "name: dice\nversion: v1\ntype: builtin\n", "semantic version"},
		{"unknown type", "name: dice\nversion: 1.0.0\ntype: wasm\n", "type must be"},
		{"lua without entry", "name: dice\nversion: 1.0.0\ntype: lua\n", "lua.entry"},
		{"bad intent", "name: dice\nversion: 1.0.0\ntype: builtin\nintents: [guild messages]\n", "intent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := module.ParseManifest([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
			errutil.AssertErrorCode(t, err, module.CodeInvalidManifest)
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, module.ValidName("a"))
	assert.True(t, module.ValidName("music-link2"))
	assert.False(t, module.ValidName(""))
	assert.False(t, module.ValidName("2music"))
	assert.False(t, module.ValidName("music_link"))
}
