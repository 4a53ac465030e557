// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package persist

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
)

// Collection is a family of items stored under "<namespace>/<key>".
type Collection[K comparable, T any] struct {
	kv        KV
	namespace string
	codec     Codec[T]
	logger    *logger.Logger

	mu    sync.Mutex
	items map[K]*Item[T]
}

// NewCollection creates an empty collection. Items are loaded on first access.
func NewCollection[K comparable, T any](kv KV, namespace string, codec Codec[T], log *logger.Logger) *Collection[K, T] {
	return &Collection[K, T]{
		kv:        kv,
		namespace: namespace,
		codec:     codec,
		logger:    log,
		items:     make(map[K]*Item[T]),
	}
}

// Item returns the item for key, loading it on first use. The same *Item is
// returned for every call with an equal key.
func (c *Collection[K, T]) Item(ctx context.Context, key K) (*Item[T], error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		return it, nil
	}

	it, err := NewItem(ctx, c.kv, c.storageKey(key), c.codec, c.logger)
	if err != nil {
		return nil, err
	}
	c.items[key] = it

	return it, nil
}

// Loaded returns the keys of items loaded so far.
func (c *Collection[K, T]) Loaded() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	return keys
}

func (c *Collection[K, T]) storageKey(key K) string {
	return fmt.Sprintf("%s/%v", c.namespace, key)
}
