// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package observer holds a typed listener list with Subscribe returning an
// unsubscribe function. Listeners are invoked synchronously in registration
// order, outside the list's lock, so a listener may subscribe or
// unsubscribe from within its callback.
package observer

import "sync"

type entry[T any] struct {
	id int
	fn func(T)
}

// List is a set of listeners for values of type T. The zero value is ready
// to use.
type List[T any] struct {
	mu      sync.Mutex
	nextID  int
	entries []entry[T]
}

// Subscribe adds fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (l *List[T]) Subscribe(fn func(T)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.entries = append(l.entries, entry[T]{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

// Notify calls every listener registered at the time of the call with v.
func (l *List[T]) Notify(v T) {
	l.mu.Lock()
	entries := append([]entry[T](nil), l.entries...)
	l.mu.Unlock()

	for _, e := range entries {
		e.fn(v)
	}
}

// Len returns the number of listeners.
func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
