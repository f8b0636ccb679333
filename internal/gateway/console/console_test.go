// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package console_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
	"github.com/onebot-dev/onebot/internal/gateway/console"
)

func next(t *testing.T, g *console.Gateway) gateway.Event {
	t.Helper()
	select {
	case ev := <-g.Events():
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return nil
	}
}

func TestConsole_ReadyThenMessages(t *testing.T) {
	in := strings.NewReader("/ping\n\nhttps://example.com/x\n")
	var out bytes.Buffer
	g := console.New(in, &out, "alice")

	require.NoError(t, g.Connect(context.Background(), []string{"GuildMessages"}))

	_, ok := next(t, g).(gateway.Ready)
	assert.True(t, ok)

	first, ok := next(t, g).(gateway.MessageCreate)
	require.True(t, ok)
	assert.Equal(t, "/ping", first.Message.Content)
	assert.Equal(t, console.ChannelID, first.Message.ChannelID)
	assert.Equal(t, "alice", first.Message.AuthorID)

	second, ok := next(t, g).(gateway.MessageCreate)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/x", second.Message.Content)
}

func TestConsole_SendEditAndCatalog(t *testing.T) {
	var out bytes.Buffer
	g := console.New(strings.NewReader(""), &out, "alice")
	ctx := context.Background()

	ref, err := g.Send(ctx, console.ChannelID, gateway.Text("loading"))
	require.NoError(t, err)
	require.NoError(t, g.Edit(ctx, ref, gateway.Text("done")))
	require.NoError(t, g.SetCommands(ctx, []command.Spec{{Name: "ping"}, {Name: "help"}}))

	text := out.String()
	assert.Contains(t, text, "loading")
	assert.Contains(t, text, ref.MessageID+" edited] done")
	assert.Contains(t, text, "commands: /ping /help")
	require.NoError(t, g.Close())
	require.NoError(t, g.Close())
}
