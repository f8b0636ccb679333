// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

package loader_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onebot-dev/onebot/internal/loader"
)

func TestStatus_FiresOnceWhenBothFlagsSet(t *testing.T) {
	s := loader.NewStatus()
	var fired atomic.Int32
	s.OnFullyLoaded(func() { fired.Add(1) })

	s.SetCommandsLoaded()
	assert.Equal(t, int32(0), fired.Load())
	assert.False(t, s.FullyLoaded())

	s.SetModulesLoaded()
	assert.Equal(t, int32(1), fired.Load())
	assert.True(t, s.FullyLoaded())

	s.SetModulesLoaded()
	s.SetCommandsLoaded()
	assert.Equal(t, int32(1), fired.Load())

	modules, commands := s.Flags()
	assert.True(t, modules)
	assert.True(t, commands)
}

func TestStatus_ConcurrentUpdates(t *testing.T) {
	s := loader.NewStatus()
	var fired atomic.Int32
	s.OnFullyLoaded(func() { fired.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); s.SetModulesLoaded() }()
		go func() { defer wg.Done(); s.SetCommandsLoaded() }()
	}
	wg.Wait()

	assert.Equal(t, int32(1), fired.Load())
	<-s.Done()
}

func TestStatus_LateCallbackNeverRuns(t *testing.T) {
	s := loader.NewStatus()
	s.SetModulesLoaded()
	s.SetCommandsLoaded()

	called := false
	s.OnFullyLoaded(func() { called = true })
	s.SetCommandsLoaded()
	assert.False(t, called)
}
