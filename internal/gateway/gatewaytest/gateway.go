// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package gatewaytest provides a recording in-memory gateway for tests.
package gatewaytest

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/oops"

	"github.com/onebot-dev/onebot/internal/gateway"
)

// Compile-time interface check.
var _ gateway.Gateway = (*Gateway)(nil)

// Sent is one recorded Send or Edit.
type Sent struct {
	Ref    gateway.MessageRef
	Msg    gateway.Outgoing
	Edited bool
}

// Gateway records outbound traffic and lets tests inject inbound events.
type Gateway struct {
	events chan gateway.Event

	mu       sync.Mutex
	intents  []string
	sent     []Sent
	sendErr  error
	editErr  error
	closed   bool
	sessions int
}

// New creates a gateway with a buffered event stream.
func New() *Gateway {
	return &Gateway{events: make(chan gateway.Event, 64)}
}

// Connect records intents and emits a Ready event.
func (g *Gateway) Connect(_ context.Context, intents []string) error {
	g.mu.Lock()
	g.intents = slices.Clone(intents)
	g.mu.Unlock()
	g.Ready()
	return nil
}

// Ready emits a Ready event, as after a (re)connect.
func (g *Gateway) Ready() {
	g.mu.Lock()
	g.sessions++
	session := g.sessions
	g.mu.Unlock()
	g.events <- gateway.Ready{User: "onebot-test", Session: session}
}

// Message emits a MessageCreate event.
func (g *Gateway) Message(msg gateway.Message) {
	if msg.ID == "" {
		msg.ID = gateway.NewID()
	}
	g.events <- gateway.MessageCreate{Message: msg}
}

// Events returns the inbound stream.
func (g *Gateway) Events() <-chan gateway.Event {
	return g.events
}

// Send records msg.
func (g *Gateway) Send(_ context.Context, channelID string, msg gateway.Outgoing) (gateway.MessageRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sendErr != nil {
		return gateway.MessageRef{}, g.sendErr
	}
	ref := gateway.MessageRef{ChannelID: channelID, MessageID: gateway.NewID()}
	g.sent = append(g.sent, Sent{Ref: ref, Msg: msg})
	return ref, nil
}

// Edit records an edit of ref.
func (g *Gateway) Edit(_ context.Context, ref gateway.MessageRef, msg gateway.Outgoing) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.editErr != nil {
		return g.editErr
	}
	for _, s := range g.sent {
		if s.Ref == ref {
			g.sent = append(g.sent, Sent{Ref: ref, Msg: msg, Edited: true})
			return nil
		}
	}
	return oops.In("gatewaytest").With("message_id", ref.MessageID).Errorf("unknown message")
}

// Close closes the event stream.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		close(g.events)
	}
	return nil
}

// FailSends makes every later Send return err.
func (g *Gateway) FailSends(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sendErr = err
}

// FailEdits makes every later Edit return err.
func (g *Gateway) FailEdits(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.editErr = err
}

// Intents returns the intents passed to Connect.
func (g *Gateway) Intents() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.intents)
}

// Sent returns all recorded sends and edits in order.
func (g *Gateway) Sent() []Sent {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.sent)
}

// Latest returns the most recent content of ref, following edits.
func (g *Gateway) Latest(ref gateway.MessageRef) (gateway.Outgoing, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := len(g.sent) - 1; i >= 0; i-- {
		if g.sent[i].Ref == ref {
			return g.sent[i].Msg, true
		}
	}
	return gateway.Outgoing{}, false
}
