// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OneBot Contributors

// Package fanout runs independent tasks concurrently and joins their results.
//
// Every task is launched before any result is awaited, so the total latency of
// a Run is bounded by the slowest task rather than the sum of all tasks. A
// task that fails or panics never affects its siblings.
package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/samber/oops"
)

// Result is the outcome of a single task.
type Result[T any] struct {
	Value T
	Err   error
}

// Options configures a Run.
type Options struct {
	// Timeout bounds each task individually. Zero means no per-task timeout.
	Timeout time.Duration
}

// Run calls fn once per input, concurrently, and returns one Result per input.
// The returned slice is index-aligned with inputs regardless of completion order.
func Run[I, T any](ctx context.Context, inputs []I, opts Options, fn func(ctx context.Context, in I) (T, error)) []Result[T] {
	results := make([]Result[T], len(inputs))

	var wg sync.WaitGroup
	wg.Add(len(inputs))
	for i, in := range inputs {
		go func() {
			defer wg.Done()
			results[i] = runOne(ctx, in, opts.Timeout, fn)
		}()
	}
	wg.Wait()

	return results
}

func runOne[I, T any](ctx context.Context, in I, timeout time.Duration, fn func(ctx context.Context, in I) (T, error)) Result[T] {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- Result[T]{Err: oops.In("fanout").Code("TASK_PANIC").Errorf("task panicked: %v", r)}
			}
		}()
		v, err := fn(ctx, in)
		done <- Result[T]{Value: v, Err: err}
	}()

	select {
	case r := <-done:
		return r
	case <-ctx.Done():
		// A task that ignores its context keeps running in the background;
		// its result is discarded once it finishes.
		return Result[T]{Err: oops.In("fanout").Code("TASK_ABANDONED").Wrapf(ctx.Err(), "task abandoned")}
	}
}

// Errors returns the non-nil errors of results, in input order.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
