// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cloud

import (
	"context"
	"testing"

	"github.com/MKhiriev/go-ledger-sync/internal/crdt"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/mock"
	"github.com/MKhiriev/go-ledger-sync/internal/persist"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRegistry(t *testing.T, s *Store, kv persist.KV) *Registry {
	t.Helper()
	r, err := NewRegistry(context.Background(), s, kv, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(r.Stop)
	return r
}

func TestRegistry_GetCachesPerKey(t *testing.T) {
	srv := newRecordServer(t)
	r := newTestRegistry(t, newHTTPStore(t, srv.URL, testKeychain(t, 1)), newMemoryKV(t))

	first, err := Get[models.Settings](r, "settings", usdSettings)
	require.NoError(t, err)
	second, err := Get[models.Settings](r, "settings", nil)
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, err = Get[models.CounterValue](r, "settings", nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestRegistry_CounterAcrossDevices(t *testing.T) {
	srv := newRecordServer(t)
	kc := testKeychain(t, 1)
	ctx := context.Background()

	phone, err := Counter(newTestRegistry(t, newHTTPStore(t, srv.URL, kc), newMemoryKV(t)), "launches")
	require.NoError(t, err)
	laptop, err := Counter(newTestRegistry(t, newHTTPStore(t, srv.URL, kc), newMemoryKV(t)), "launches")
	require.NoError(t, err)

	require.NoError(t, Increment(ctx, phone, 1))
	require.NoError(t, Increment(ctx, laptop, 2))
	require.NoError(t, Increment(ctx, phone, 3))
	assert.Equal(t, int64(4), phone.Value().Counter)

	require.NoError(t, phone.Sync(ctx))
	require.NoError(t, laptop.Sync(ctx))
	require.NoError(t, phone.Sync(ctx))

	assert.Equal(t, int64(6), phone.Value().Counter)
	assert.Equal(t, int64(6), laptop.Value().Counter)
}

// ── actor ids ─────────────────────────────────────────────────────────────────

func TestLoadActorID(t *testing.T) {
	ctx := context.Background()
	kv := newMemoryKV(t)

	first, err := LoadActorID(ctx, kv)
	require.NoError(t, err)
	assert.True(t, crdt.ValidActorID(first))

	again, err := LoadActorID(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	require.NoError(t, kv.Set(ctx, ActorKey, []byte("not-an-actor")))
	replaced, err := LoadActorID(ctx, kv)
	require.NoError(t, err)
	assert.NotEqual(t, first, replaced)
	assert.True(t, crdt.ValidActorID(replaced))
}

func TestLoadActorID_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	kv := mock.NewMockKV(ctrl)
	kv.EXPECT().Get(gomock.Any(), ActorKey).Return(nil, false, persist.ErrLoad)

	_, err := LoadActorID(context.Background(), kv)

	assert.ErrorIs(t, err, ErrActorID)
	assert.ErrorIs(t, err, persist.ErrLoad)
}

func TestNewRegistry_UsesStoredActor(t *testing.T) {
	srv := newRecordServer(t)
	kv := newMemoryKV(t)
	actor, err := LoadActorID(context.Background(), kv)
	require.NoError(t, err)

	r := newTestRegistry(t, newHTTPStore(t, srv.URL, testKeychain(t, 1)), kv)

	assert.Equal(t, actor, r.Actor())
}
