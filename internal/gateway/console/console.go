// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package console implements a gateway over a terminal, for local runs.
//
// Every input line becomes a message in channel "console"; every outbound
// message and edit is rendered as plain text.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/onebot-dev/onebot/internal/command"
	"github.com/onebot-dev/onebot/internal/gateway"
)

// ChannelID is the single channel of a console session.
const ChannelID = "console"

// Compile-time interface checks.
var (
	_ gateway.Gateway = (*Gateway)(nil)
	_ command.Catalog = (*Gateway)(nil)
)

// Gateway reads messages from in and writes bot output to out.
type Gateway struct {
	in     io.Reader
	out    io.Writer
	user   string
	events chan gateway.Event
	done   chan struct{}

	mu     sync.Mutex
	closed bool
}

// New creates a console gateway. user names the human at the terminal.
func New(in io.Reader, out io.Writer, user string) *Gateway {
	return &Gateway{
		in:     in,
		out:    out,
		user:   user,
		events: make(chan gateway.Event, 16),
		done:   make(chan struct{}),
	}
}

// Connect emits Ready and starts reading input lines.
func (g *Gateway) Connect(ctx context.Context, intents []string) error {
	slog.Info("console gateway connected", "intents", intents)
	g.events <- gateway.Ready{User: "onebot", Session: 1}

	go g.read(ctx)
	return nil
}

func (g *Gateway) read(ctx context.Context) {
	scanner := bufio.NewScanner(g.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ev := gateway.MessageCreate{Message: gateway.Message{
			ID:         gateway.NewID(),
			ChannelID:  ChannelID,
			AuthorID:   g.user,
			AuthorName: g.user,
			Content:    line,
		}}
		select {
		case g.events <- ev:
		case <-ctx.Done():
			return
		case <-g.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("console input failed", "error", err)
	}
}

// Events returns the inbound stream.
func (g *Gateway) Events() <-chan gateway.Event {
	return g.events
}

// Send prints msg.
func (g *Gateway) Send(_ context.Context, channelID string, msg gateway.Outgoing) (gateway.MessageRef, error) {
	ref := gateway.MessageRef{ChannelID: channelID, MessageID: gateway.NewID()}
	g.write(fmt.Sprintf("[%s] ", ref.MessageID), msg)
	return ref, nil
}

// Edit prints the replacement content of ref.
func (g *Gateway) Edit(_ context.Context, ref gateway.MessageRef, msg gateway.Outgoing) error {
	g.write(fmt.Sprintf("[%s edited] ", ref.MessageID), msg)
	return nil
}

// SetCommands prints the published command set.
func (g *Gateway) SetCommands(_ context.Context, specs []command.Spec) error {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = command.Prefix + s.Name
	}
	g.write("", gateway.Text("commands: "+strings.Join(names, " ")))
	return nil
}

func (g *Gateway) write(prefix string, msg gateway.Outgoing) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, err := io.WriteString(g.out, prefix+gateway.PlainText(msg)); err != nil {
		slog.Warn("console output failed", "error", err)
	}
}

// Close stops delivering input lines. The event stream stays open because
// a blocked terminal read cannot be interrupted.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		close(g.done)
	}
	return nil
}
