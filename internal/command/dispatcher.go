// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("onebot/command")

// Dispatcher parses chat input and executes registered commands.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch parses input and runs the matching command.
// Input without the command prefix yields a NOT_COMMAND error.
func (d *Dispatcher) Dispatch(ctx context.Context, input string, inv *Invocation) (err error) {
	parsed, err := Parse(input)
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", parsed.Name),
			attribute.String("channel.id", inv.ChannelID),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	entry, ok := d.registry.Get(parsed.Name)
	if !ok {
		RecordCommandExecution(parsed.Name, "", StatusNotFound)
		err = ErrUnknownCommand(parsed.Name)
		return err
	}

	span.SetAttributes(attribute.String("command.module", entry.Module))

	inv.Name = entry.Name
	inv.Args = parsed.Args

	start := time.Now()
	err = entry.Handler(ctx, inv)
	RecordCommandDuration(entry.Name, entry.Module, time.Since(start))
	if err != nil {
		RecordCommandExecution(entry.Name, entry.Module, StatusError)
		slog.WarnContext(ctx, "command execution failed",
			"command", entry.Name,
			"module", entry.Module,
			"error", err,
		)
		return err
	}

	RecordCommandExecution(entry.Name, entry.Module, StatusSuccess)
	return nil
}
