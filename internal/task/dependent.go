// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package task

import "context"

// Source is an observable value a dependent task recomputes from.
type Source[U any] interface {
	// Value returns the current value and false when nothing is stored yet.
	Value() (U, bool)
	// Subscribe registers fn for every change and returns an unsubscribe func.
	Subscribe(fn func(U)) func()
}

// Dependent wires a task to upstream: every upstream change invalidates the
// task, and each run calls handler with the latest upstream value. Runs are
// no-ops while upstream is empty. When upstream already holds a value the task
// is invalidated immediately.
//
// The returned function unsubscribes from upstream and stops the task.
func Dependent[U any](
	ctx context.Context,
	key string,
	upstream Source[U],
	handler func(ctx context.Context, value U) error,
	opts ...Option,
) (*Task, func()) {
	t := New(ctx, key, func(ctx context.Context) error {
		v, ok := upstream.Value()
		if !ok {
			return nil
		}
		return handler(ctx, v)
	}, opts...)

	unsubscribe := upstream.Subscribe(func(U) {
		t.Invalidate()
	})

	if _, ok := upstream.Value(); ok {
		t.Invalidate()
	}

	return t, func() {
		unsubscribe()
		t.Stop()
	}
}
