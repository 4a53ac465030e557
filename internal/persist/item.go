// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package persist

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/observer"
)

// Item is one persisted value with change notification. The in-memory copy is
// loaded once at construction; writes go to the KV first and are published
// only after they were stored.
type Item[T any] struct {
	kv     KV
	key    string
	codec  Codec[T]
	logger *logger.Logger

	// writeMu serializes Set and Update including listener calls, so
	// listeners observe changes in write order.
	writeMu sync.Mutex

	mu    sync.RWMutex
	value T
	set   bool

	observers observer.List[T]
}

// NewItem loads key from kv. A value that fails to decode is logged and the
// item starts empty.
func NewItem[T any](ctx context.Context, kv KV, key string, codec Codec[T], log *logger.Logger) (*Item[T], error) {
	it := &Item[T]{
		kv:     kv,
		key:    key,
		codec:  codec,
		logger: log,
	}

	data, ok, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, key, err)
	}
	if !ok {
		return it, nil
	}

	v, err := codec.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("func", "NewItem").Str("key", key).Msg("discarding corrupt persisted value")
		return it, nil
	}
	it.value, it.set = v, true

	return it, nil
}

// Key returns the storage key.
func (it *Item[T]) Key() string {
	return it.key
}

// Value returns the current value and false when nothing is stored.
func (it *Item[T]) Value() (T, bool) {
	it.mu.RLock()
	defer it.mu.RUnlock()
	return it.value, it.set
}

// Set stores v and notifies listeners. Listeners must not write to the same
// item synchronously.
func (it *Item[T]) Set(ctx context.Context, v T) error {
	it.writeMu.Lock()
	defer it.writeMu.Unlock()

	return it.store(ctx, v)
}

// Update replaces the value with fn(current, ok). It holds the write lock for
// the whole read-modify-write, so concurrent Updates never lose writes.
func (it *Item[T]) Update(ctx context.Context, fn func(current T, ok bool) (T, error)) (T, error) {
	it.writeMu.Lock()
	defer it.writeMu.Unlock()

	current, ok := it.Value()
	next, err := fn(current, ok)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := it.store(ctx, next); err != nil {
		var zero T
		return zero, err
	}

	return next, nil
}

// Clear removes the stored value. Listeners are not called.
func (it *Item[T]) Clear(ctx context.Context) error {
	it.writeMu.Lock()
	defer it.writeMu.Unlock()

	if err := it.kv.Delete(ctx, it.key); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStore, it.key, err)
	}

	it.mu.Lock()
	var zero T
	it.value, it.set = zero, false
	it.mu.Unlock()

	return nil
}

// Subscribe registers fn for every stored change.
func (it *Item[T]) Subscribe(fn func(T)) func() {
	return it.observers.Subscribe(fn)
}

func (it *Item[T]) store(ctx context.Context, v T) error {
	data, err := it.codec.Encode(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrEncode, it.key, err)
	}
	if err := it.kv.Set(ctx, it.key, data); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStore, it.key, err)
	}

	it.mu.Lock()
	it.value, it.set = v, true
	it.mu.Unlock()

	it.observers.Notify(v)
	return nil
}
