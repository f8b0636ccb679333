// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"regexp"
	"strings"

	"github.com/samber/oops"
)

// MaxNameLength is the maximum length of a command name accepted by chat catalogs.
const MaxNameLength = 32

// namePattern matches lower-case catalog command names: a letter followed by
// letters, digits, underscores, or hyphens.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// ValidateName validates a command name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return oops.Code(CodeInvalidCommand).
			Errorf("command name cannot be empty")
	}

	if len(trimmed) > MaxNameLength {
		return oops.Code(CodeInvalidCommand).
			With("command", trimmed).
			With("length", len(trimmed)).
			With("max", MaxNameLength).
			Errorf("command name exceeds maximum length of %d", MaxNameLength)
	}

	if trimmed != name || !namePattern.MatchString(trimmed) {
		return oops.Code(CodeInvalidCommand).
			With("command", name).
			Errorf("command name must start with a-z and contain only a-z, 0-9, '_' or '-'")
	}

	return nil
}

func validate(c Command) error {
	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if c.Handler == nil {
		return oops.Code(CodeInvalidCommand).
			With("command", c.Name).
			With("module", c.Module).
			Errorf("command %s has no handler", c.Name)
	}
	return nil
}
