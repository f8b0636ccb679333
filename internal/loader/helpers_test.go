// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package loader_test

import (
	"context"
	"errors"

	"github.com/sethvargo/go-retry"

	"github.com/onebot-dev/onebot/internal/command"
)

type failingCatalog struct{}

func (failingCatalog) SetCommands(context.Context, []command.Spec) error {
	return errors.New("catalog unavailable")
}

func noRetry() retry.Backoff {
	return retry.WithMaxRetries(0, retry.NewConstant(1))
}
