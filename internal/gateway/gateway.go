// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package gateway defines the boundary to the chat platform connection.
package gateway

import (
	"context"
	"time"
)

// Gateway is a connection to a chat platform.
type Gateway interface {
	// Connect opens the connection requesting the given privileges.
	// Ready events are delivered on Events once the connection is usable,
	// and again after every reconnect.
	Connect(ctx context.Context, intents []string) error

	// Events returns the inbound event stream. Implementations may close it
	// on shutdown; consumers also stop on context cancellation.
	Events() <-chan Event

	// Send posts a new message to a channel.
	Send(ctx context.Context, channelID string, msg Outgoing) (MessageRef, error)

	// Edit replaces the content of a previously sent message.
	Edit(ctx context.Context, ref MessageRef, msg Outgoing) error

	// Close disconnects and closes the event stream.
	Close() error
}

// Event is an inbound gateway event: Ready or MessageCreate.
type Event interface {
	eventName() string
}

// Ready signals that the connection is established.
type Ready struct {
	User    string // the bot's own display name
	Session int    // increments on every (re)connect
}

func (Ready) eventName() string { return "ready" }

// MessageCreate signals a new inbound message.
type MessageCreate struct {
	Message Message
}

func (MessageCreate) eventName() string { return "messageCreate" }

// Name returns the wire name of e.
func Name(e Event) string {
	return e.eventName()
}

// Message is an inbound chat message.
type Message struct {
	ID         string
	ChannelID  string
	AuthorID   string
	AuthorName string
	AuthorBot  bool
	Content    string
}

// MessageRef identifies a sent message for later edits.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Outgoing is a message the bot sends or edits.
type Outgoing struct {
	Content string
	Embeds  []Embed
}

// Text is a convenience constructor for a plain text message.
func Text(s string) Outgoing {
	return Outgoing{Content: s}
}

// Color is an embed accent color as 0xRRGGBB.
type Color int

// Embed colors used by the bot.
const (
	ColorYellow Color = 0xFEE75C
	ColorGreen  Color = 0x57F287
	ColorRed    Color = 0xED4245
)

// Embed is a rich message card.
type Embed struct {
	Author      string
	AuthorIcon  string
	Title       string
	Color       Color
	Description string
	Thumbnail   string
	Fields      []Field
	Timestamp   time.Time
}

// Field is a titled value inside an Embed.
type Field struct {
	Name   string
	Value  string
	Inline bool
}
