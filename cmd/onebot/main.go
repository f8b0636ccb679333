// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package main is the entry point for the onebot CLI.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// ExitRestart tells the process supervisor to start the bot again.
const ExitRestart = 3

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errRestart) {
			os.Exit(ExitRestart)
		}
		os.Exit(1)
	}
}
