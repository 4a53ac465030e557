// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cloud

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/adapter"
	"github.com/MKhiriev/go-ledger-sync/internal/config"
	"github.com/MKhiriev/go-ledger-sync/internal/crypto"
	httphandler "github.com/MKhiriev/go-ledger-sync/internal/handler/http"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/mock"
	"github.com/MKhiriev/go-ledger-sync/internal/service"
	"github.com/MKhiriev/go-ledger-sync/internal/store"
	"github.com/MKhiriev/go-ledger-sync/internal/utils"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newRecordServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.Nop()
	storages, err := store.NewStorages(context.Background(), config.Storage{}, log)
	require.NoError(t, err)

	services, err := service.NewServices(storages, &config.ServerConfig{
		Server: config.ServerTransport{SignatureWindow: 2 * time.Minute},
	}, log)
	require.NoError(t, err)

	srv := httptest.NewServer(httphandler.NewHandler(services, log).Init())
	t.Cleanup(srv.Close)
	return srv
}

func testKeychain(t *testing.T, seed byte) crypto.Keychain {
	t.Helper()
	kc, err := crypto.NewKeychain(bytes.Repeat([]byte{seed}, 32), config.NetworkSandbox)
	require.NoError(t, err)
	return kc
}

func newHTTPStore(t *testing.T, url string, kc crypto.Keychain) *Store {
	t.Helper()
	a, err := adapter.NewHTTPStorageAdapter(config.ClientAdapter{
		StorageURL:     url,
		RequestTimeout: 5 * time.Second,
	}, validators.NewStructValidator(), logger.Nop())
	require.NoError(t, err)
	return NewStore(a, kc)
}

func sealed(t *testing.T, kc crypto.Keychain, key string, plaintext string) *string {
	t.Helper()
	keys, err := kc.ContentKeys(key)
	require.NoError(t, err)
	box, err := keys.Seal([]byte(plaintext))
	require.NoError(t, err)
	s := base64.StdEncoding.EncodeToString(box)
	return &s
}

// ── against the record server ─────────────────────────────────────────────────

func TestStore_ReadMissingRecord(t *testing.T) {
	srv := newRecordServer(t)
	s := newHTTPStore(t, srv.URL, testKeychain(t, 1))

	rec, err := s.Read(context.Background(), "settings")

	require.NoError(t, err)
	assert.Equal(t, models.Record{}, rec)
}

func TestStore_UpdateThenRead(t *testing.T) {
	srv := newRecordServer(t)
	s := newHTTPStore(t, srv.URL, testKeychain(t, 1))
	ctx := context.Background()

	committed, err := s.Update(ctx, "settings", func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte("v1"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), committed)

	rec, err := s.Read(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, models.Record{Seq: 1, Value: []byte("v1")}, rec)

	// other keys and other secrets address other records
	other, err := s.Read(ctx, "launches")
	require.NoError(t, err)
	assert.Equal(t, int64(0), other.Seq)

	foreign, err := newHTTPStore(t, srv.URL, testKeychain(t, 2)).Read(ctx, "settings")
	require.NoError(t, err)
	assert.Equal(t, int64(0), foreign.Seq)
}

func TestStore_ConcurrentUpdatesConverge(t *testing.T) {
	srv := newRecordServer(t)
	kc := testKeychain(t, 1)
	ctx := context.Background()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		s := newHTTPStore(t, srv.URL, kc)
		letter := string(rune('a' + i))
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, "log", func(current []byte) ([]byte, error) {
				return append(bytes.Clone(current), letter...), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := newHTTPStore(t, srv.URL, kc).Read(ctx, "log")
	require.NoError(t, err)
	assert.Equal(t, int64(writers), rec.Seq)

	got := strings.Split(string(rec.Value), "")
	sort.Strings(got)
	assert.Equal(t, "abcdefgh", strings.Join(got, ""))
}

// ── failure modes ─────────────────────────────────────────────────────────────

func TestStore_Read_Failures(t *testing.T) {
	kc := testKeychain(t, 1)
	notBase64 := "%%%"
	garbage := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 64))
	netErr := errors.New("connection reset")

	tests := []struct {
		name    string
		resp    models.ReadResponse
		err     error
		wantErr error
	}{
		{
			name:    "network error is returned as is",
			err:     netErr,
			wantErr: netErr,
		},
		{
			name:    "malformed adapter response",
			err:     adapter.ErrMalformedResponse,
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "value is not base64",
			resp:    models.ReadResponse{OK: true, Value: models.RecordValue{Seq: 1, Value: &notBase64}},
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "box does not open",
			resp:    models.ReadResponse{OK: true, Value: models.RecordValue{Seq: 1, Value: &garbage}},
			wantErr: ErrOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			a := mock.NewMockStorageAdapter(ctrl)
			a.EXPECT().ReadRecord(gomock.Any(), gomock.Any()).Return(tt.resp, tt.err)

			_, err := NewStore(a, kc).Read(context.Background(), "settings")

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStore_Read_SignsRequest(t *testing.T) {
	kc := testKeychain(t, 1)
	keys, err := kc.ContentKeys("settings")
	require.NoError(t, err)
	now := time.Unix(1_700_000_000, 0)

	ctrl := gomock.NewController(t)
	a := mock.NewMockStorageAdapter(ctrl)
	a.EXPECT().ReadRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.ReadRequest) (models.ReadResponse, error) {
			assert.Equal(t, base64.StdEncoding.EncodeToString(keys.Public), req.Key)
			assert.Equal(t, now.Add(DefaultRequestTTL).Unix(), req.Time)

			sig, err := base64.StdEncoding.DecodeString(req.Signature)
			require.NoError(t, err)
			ok, err := crypto.Verify(keys.Public, crypto.ReadPayload(keys.Public, uint32(req.Time)), sig)
			require.NoError(t, err)
			assert.True(t, ok)

			return models.ReadResponse{OK: true, Value: models.RecordValue{Seq: 3, Value: sealed(t, kc, "settings", "x")}}, nil
		})

	rec, err := NewStore(a, kc, WithClock(func() time.Time { return now })).Read(context.Background(), "settings")

	require.NoError(t, err)
	assert.Equal(t, models.Record{Seq: 3, Value: []byte("x")}, rec)
}

func TestStore_Update_Failures(t *testing.T) {
	kc := testKeychain(t, 1)
	empty := models.ReadResponse{OK: true}

	tests := []struct {
		name    string
		write   models.WriteResponse
		wantErr error
	}{
		{
			name:    "committed with wrong seq",
			write:   models.WriteResponse{Updated: true, Current: models.RecordValue{Seq: 5}},
			wantErr: ErrMalformedResponse,
		},
		{
			name:    "rejected at matching seq",
			write:   models.WriteResponse{Updated: false, Current: models.RecordValue{Seq: 0}},
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			a := mock.NewMockStorageAdapter(ctrl)
			a.EXPECT().ReadRecord(gomock.Any(), gomock.Any()).Return(empty, nil)
			a.EXPECT().WriteRecord(gomock.Any(), gomock.Any()).Return(tt.write, nil)

			_, err := NewStore(a, kc).Update(context.Background(), "settings", func([]byte) ([]byte, error) {
				return []byte("v"), nil
			})

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStore_Update_RetriesOnWinnerState(t *testing.T) {
	kc := testKeychain(t, 1)
	ctrl := gomock.NewController(t)
	a := mock.NewMockStorageAdapter(ctrl)

	var traceIDs []string
	trace := func(ctx context.Context) {
		id, _ := utils.GetTraceIDFromContext(ctx)
		traceIDs = append(traceIDs, id)
	}

	a.EXPECT().ReadRecord(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ models.ReadRequest) (models.ReadResponse, error) {
			trace(ctx)
			return models.ReadResponse{OK: true}, nil
		})
	gomock.InOrder(
		a.EXPECT().WriteRecord(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error) {
				trace(ctx)
				assert.Equal(t, int64(0), req.Seq)
				return models.WriteResponse{Current: models.RecordValue{Seq: 1, Value: sealed(t, kc, "k", "winner")}}, nil
			}),
		a.EXPECT().WriteRecord(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error) {
				trace(ctx)
				assert.Equal(t, int64(1), req.Seq)
				return models.WriteResponse{Updated: true, Current: models.RecordValue{Seq: 2}}, nil
			}),
	)

	var seen []string
	committed, err := NewStore(a, kc).Update(context.Background(), "k", func(current []byte) ([]byte, error) {
		seen = append(seen, string(current))
		return append(bytes.Clone(current), '+'), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"", "winner"}, seen)
	assert.Equal(t, []byte("winner+"), committed)

	require.Len(t, traceIDs, 3)
	assert.NotEmpty(t, traceIDs[0])
	assert.Equal(t, traceIDs[0], traceIDs[1])
	assert.Equal(t, traceIDs[0], traceIDs[2])
}

func TestStore_Update_FnErrorWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	a := mock.NewMockStorageAdapter(ctrl)
	a.EXPECT().ReadRecord(gomock.Any(), gomock.Any()).Return(models.ReadResponse{OK: true}, nil)

	_, err := NewStore(a, testKeychain(t, 1)).Update(context.Background(), "k", func([]byte) ([]byte, error) {
		return nil, errors.New("nope")
	})

	assert.ErrorIs(t, err, ErrUpdateFn)
}

func TestStore_KeyDerivationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	kc := mock.NewMockKeychain(ctrl)
	kc.EXPECT().ContentKeys("k").Return(nil, crypto.ErrInvalidMasterKey)

	_, err := NewStore(mock.NewMockStorageAdapter(ctrl), kc).Read(context.Background(), "k")

	assert.ErrorIs(t, err, ErrKeyDerivation)
	assert.ErrorIs(t, err, crypto.ErrInvalidMasterKey)
}
