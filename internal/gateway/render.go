// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package gateway

import (
	"fmt"
	"strings"
)

// PlainText renders msg for text-only transports such as a terminal.
func PlainText(msg Outgoing) string {
	var b strings.Builder
	if msg.Content != "" {
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	for _, e := range msg.Embeds {
		if e.Author != "" {
			fmt.Fprintf(&b, "%s\n", e.Author)
		}
		if e.Title != "" {
			fmt.Fprintf(&b, "== %s ==\n", e.Title)
		}
		if e.Description != "" {
			b.WriteString(e.Description)
			if !strings.HasSuffix(e.Description, "\n") {
				b.WriteString("\n")
			}
		}
		for _, f := range e.Fields {
			fmt.Fprintf(&b, "%s: %s\n", f.Name, f.Value)
		}
	}
	return b.String()
}
