// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package command

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { RegisterMetrics(reg) })
	assert.Panics(t, func() { RegisterMetrics(reg) }, "double registration must panic")
}

func TestRegistry_RecordsPublishOutcomes(t *testing.T) {
	okBefore := testutil.ToFloat64(CatalogPublishes.WithLabelValues("load", StatusSuccess))
	errBefore := testutil.ToFloat64(CatalogPublishes.WithLabelValues("load", StatusError))

	reg := NewRegistry(WithCatalog(&MemoryCatalog{}))
	require.NoError(t, reg.Load(context.Background(), []Command{cmd("ping", "utility")}))
	assert.Equal(t, float64(1), testutil.ToFloat64(RegisteredCommands))

	failing := &mockCatalog{}
	failing.On("SetCommands", mock.Anything, mock.Anything).Return(errors.New("down"))
	bad := NewRegistry(WithCatalog(failing), WithPublishBackoff(noRetry))
	require.Error(t, bad.Load(context.Background(), []Command{cmd("ping", "utility")}))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(CatalogPublishes.WithLabelValues("load", StatusSuccess)))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(CatalogPublishes.WithLabelValues("load", StatusError)))
}
