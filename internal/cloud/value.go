// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cloud

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/crdt"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/observer"
	"github.com/MKhiriev/go-ledger-sync/internal/persist"
	"github.com/MKhiriev/go-ledger-sync/internal/task"
)

// Initializer fills a freshly created document.
type Initializer func(doc *crdt.Document) error

// localKeyPrefix namespaces persisted documents in the local KV.
const localKeyPrefix = "cloud/"

// Value is a document synced through a [Store] and projected into T.
//
// Local edits are applied and persisted immediately, then a background task
// reconciles with the remote record: the remote document is merged into a copy
// of the local one and written back with compare-and-swap, and the committed
// state is merged into the local document.
type Value[T any] struct {
	key    string
	store  *Store
	item   *persist.Item[[]byte]
	actor  string
	logger *logger.Logger

	mu    sync.Mutex
	doc   *crdt.Document
	value T

	observers observer.List[T]
	task      *task.Task
}

// NewValue loads the local copy of key from kv, or creates it with init, and
// schedules a first sync. A local copy that fails to decode is logged and
// replaced by a fresh initialized document.
func NewValue[T any](ctx context.Context, key string, store *Store, kv persist.KV, actor string, init Initializer, log *logger.Logger, opts ...task.Option) (*Value[T], error) {
	item, err := persist.NewItem(ctx, kv, localKeyPrefix+key, persist.BytesCodec{}, log)
	if err != nil {
		return nil, err
	}

	v := &Value[T]{
		key:    key,
		store:  store,
		item:   item,
		actor:  actor,
		logger: log,
	}

	doc, err := v.load(ctx, init)
	if err != nil {
		return nil, err
	}
	v.doc = doc
	if v.value, err = project[T](doc); err != nil {
		return nil, err
	}

	opts = append([]task.Option{task.WithLogger(log)}, opts...)
	v.task = task.New(ctx, "cloud:"+key, v.sync, opts...)
	v.task.Invalidate()

	return v, nil
}

func (v *Value[T]) load(ctx context.Context, init Initializer) (*crdt.Document, error) {
	if data, ok := v.item.Value(); ok {
		doc, err := crdt.Unmarshal(data, v.actor)
		if err == nil {
			return doc, nil
		}
		v.logger.Warn().Err(err).
			Str("func", "*Value.load").
			Str("key", v.key).
			Msg("discarding corrupt local document")
	}

	doc := crdt.New(v.actor)
	if init != nil {
		if err := init(doc); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", v.key, err)
		}
	}
	if err := v.persist(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Key returns the record key.
func (v *Value[T]) Key() string {
	return v.key
}

// Value returns the current projection.
func (v *Value[T]) Value() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Document returns a copy of the local document.
func (v *Value[T]) Document() *crdt.Document {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.doc.Clone()
}

// Subscribe registers fn for every change of the projection.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	return v.observers.Subscribe(fn)
}

// Update edits the local document with fn, persists it, notifies subscribers
// and schedules a sync. When fn fails nothing changes.
func (v *Value[T]) Update(ctx context.Context, fn func(doc *crdt.Document) error) error {
	v.mu.Lock()
	next := v.doc.Clone()
	if err := fn(next); err != nil {
		v.mu.Unlock()
		return err
	}
	value, err := v.commitLocked(ctx, next)
	v.mu.Unlock()
	if err != nil {
		return err
	}

	v.observers.Notify(value)
	v.task.Invalidate()
	return nil
}

// Sync runs a reconcile with the remote record and waits for it.
func (v *Value[T]) Sync(ctx context.Context) error {
	return v.task.InvalidateAndAwait(ctx)
}

// Stop ends background syncing.
func (v *Value[T]) Stop() {
	v.task.Stop()
}

func (v *Value[T]) sync(ctx context.Context) error {
	v.mu.Lock()
	local := v.doc.Clone()
	v.mu.Unlock()

	committed, err := v.store.Update(ctx, v.key, func(remote []byte) ([]byte, error) {
		candidate := local.Clone()
		if remote != nil {
			theirs, err := crdt.Unmarshal(remote, v.actor)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrRemoteDocument, err)
			}
			candidate.Apply(theirs)
		}
		return candidate.Marshal()
	})
	if err != nil {
		return err
	}

	final, err := decodeCommitted(committed, v.actor)
	if err != nil {
		return err
	}

	v.mu.Lock()
	next := v.doc.Clone()
	next.Apply(final)
	if next.Equal(v.doc) {
		v.mu.Unlock()
		return nil
	}
	value, err := v.commitLocked(ctx, next)
	v.mu.Unlock()
	if err != nil {
		return err
	}

	v.logger.Debug().Str("func", "*Value.sync").Str("key", v.key).Msg("merged remote state")
	v.observers.Notify(value)
	return nil
}

// decodeCommitted parses the document the store committed.
func decodeCommitted(committed []byte, actor string) (*crdt.Document, error) {
	doc, err := crdt.Unmarshal(committed, actor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteDocument, err)
	}
	return doc, nil
}

// commitLocked persists doc and makes it current. v.mu must be held.
func (v *Value[T]) commitLocked(ctx context.Context, doc *crdt.Document) (T, error) {
	value, err := project[T](doc)
	if err != nil {
		return value, err
	}
	if err := v.persist(ctx, doc); err != nil {
		return value, err
	}

	v.doc = doc
	v.value = value
	return value, nil
}

func (v *Value[T]) persist(ctx context.Context, doc *crdt.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return v.item.Set(ctx, data)
}

func project[T any](doc *crdt.Document) (T, error) {
	var value T
	err := doc.Value(&value)
	return value, err
}
