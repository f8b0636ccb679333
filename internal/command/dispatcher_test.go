// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onebot-dev/onebot/pkg/errutil"
)

func TestDispatcher_RunsHandlerWithArgs(t *testing.T) {
	reg := NewRegistry()
	var got *Invocation
	require.NoError(t, reg.Load(context.Background(), []Command{{
		Name:   "load",
		Module: "admin",
		Handler: func(_ context.Context, inv *Invocation) error {
			got = inv
			return nil
		},
	}}))

	d := NewDispatcher(reg)
	inv := &Invocation{ChannelID: "c1", AuthorID: "u1"}
	require.NoError(t, d.Dispatch(context.Background(), "/load  music", inv))

	require.NotNil(t, got)
	assert.Equal(t, "load", got.Name)
	assert.Equal(t, "music", got.Args)
	assert.Equal(t, "c1", got.ChannelID)
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	before := testutil.ToFloat64(CommandExecutions.WithLabelValues("nope", "", StatusNotFound))

	err := d.Dispatch(context.Background(), "/nope", &Invocation{})

	errutil.AssertErrorCode(t, err, CodeUnknownCommand)
	assert.Equal(t, before+1, testutil.ToFloat64(CommandExecutions.WithLabelValues("nope", "", StatusNotFound)))
}

func TestDispatcher_NotACommand(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	err := d.Dispatch(context.Background(), "hello there", &Invocation{})
	errutil.AssertErrorCode(t, err, CodeNotCommand)
}

func TestDispatcher_HandlerErrorIsReturned(t *testing.T) {
	reg := NewRegistry()
	boom := errors.New("boom")
	require.NoError(t, reg.Load(context.Background(), []Command{{
		Name:    "explode",
		Module:  "test",
		Handler: func(context.Context, *Invocation) error { return boom },
	}}))
	before := testutil.ToFloat64(CommandExecutions.WithLabelValues("explode", "test", StatusError))

	err := NewDispatcher(reg).Dispatch(context.Background(), "/explode", &Invocation{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before+1, testutil.ToFloat64(CommandExecutions.WithLabelValues("explode", "test", StatusError)))
}
