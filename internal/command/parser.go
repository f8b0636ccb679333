// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"strings"

	"github.com/samber/oops"
)

// Prefix marks a chat message as a command invocation.
const Prefix = "/"

// ParsedCommand represents a parsed command input.
type ParsedCommand struct {
	Name string // command name (first whitespace-delimited token, prefix removed)
	Args string // unparsed argument string (preserves internal whitespace)
	Raw  string // original input
}

// Parse splits a prefixed chat message into command name and arguments.
// Messages without the prefix are not commands.
func Parse(input string) (*ParsedCommand, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, Prefix) {
		return nil, oops.Code(CodeNotCommand).Errorf("input is not a command")
	}
	trimmed = strings.TrimPrefix(trimmed, Prefix)
	if trimmed == "" || strings.IndexAny(trimmed[:1], " \t") == 0 {
		return nil, oops.Code(CodeNotCommand).Errorf("no command provided")
	}

	idx := strings.IndexAny(trimmed, " \t")
	if idx == -1 {
		return &ParsedCommand{
			Name: strings.ToLower(trimmed),
			Raw:  input,
		}, nil
	}

	return &ParsedCommand{
		Name: strings.ToLower(trimmed[:idx]),
		Args: strings.TrimLeft(trimmed[idx+1:], " \t"),
		Raw:  input,
	}, nil
}
