// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cloud

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/crdt"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/persist"
	"github.com/MKhiriev/go-ledger-sync/internal/task"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// ActorKey holds this device's document actor id in the local KV.
const ActorKey = "cloud_actor"

// CounterField is the single counter of documents created by [Counter].
const CounterField = "counter"

// stopper is satisfied by every *Value[T].
type stopper interface {
	Stop()
}

// Registry hands out one [Value] per record key.
type Registry struct {
	ctx      context.Context
	store    *Store
	kv       persist.KV
	actor    string
	logger   *logger.Logger
	taskOpts []task.Option

	mu     sync.Mutex
	values map[string]stopper
}

// NewRegistry loads or creates the device actor id and returns an empty
// registry. Values created by it sync with opts applied to their tasks.
func NewRegistry(ctx context.Context, store *Store, kv persist.KV, log *logger.Logger, opts ...task.Option) (*Registry, error) {
	actor, err := LoadActorID(ctx, kv)
	if err != nil {
		return nil, err
	}

	return &Registry{
		ctx:      ctx,
		store:    store,
		kv:       kv,
		actor:    actor,
		logger:   log,
		taskOpts: opts,
		values:   make(map[string]stopper),
	}, nil
}

// Actor returns the device actor id.
func (r *Registry) Actor() string {
	return r.actor
}

// Get returns the value for key, creating it with init on first use. Asking
// for a key already created with another T fails with [ErrTypeMismatch].
func Get[T any](r *Registry, key string, init Initializer) (*Value[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.values[key]; ok {
		v, ok := existing.(*Value[T])
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrTypeMismatch, key)
		}
		return v, nil
	}

	v, err := NewValue[T](r.ctx, key, r.store, r.kv, r.actor, init, r.logger, r.taskOpts...)
	if err != nil {
		return nil, err
	}
	r.values[key] = v

	return v, nil
}

// Counter returns a synced value holding one counter.
func Counter(r *Registry, key string) (*Value[models.CounterValue], error) {
	return Get[models.CounterValue](r, key, nil)
}

// Increment adds delta to a value created by [Counter].
func Increment(ctx context.Context, v *Value[models.CounterValue], delta int64) error {
	return v.Update(ctx, func(doc *crdt.Document) error {
		return doc.Increment(CounterField, delta)
	})
}

// Stop stops every value's background sync.
func (r *Registry) Stop() {
	r.mu.Lock()
	values := make([]stopper, 0, len(r.values))
	for _, v := range r.values {
		values = append(values, v)
	}
	r.mu.Unlock()

	for _, v := range values {
		v.Stop()
	}
}

// LoadActorID returns the actor id stored in kv, generating and storing a
// new one when it is missing or invalid.
func LoadActorID(ctx context.Context, kv persist.KV) (string, error) {
	data, ok, err := kv.Get(ctx, ActorKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrActorID, err)
	}
	if ok && crdt.ValidActorID(string(data)) {
		return string(data), nil
	}

	actor := crdt.NewActorID()
	if err := kv.Set(ctx, ActorKey, []byte(actor)); err != nil {
		return "", fmt.Errorf("%w: %w", ErrActorID, err)
	}
	return actor, nil
}
