// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/crypto"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────

type mockInnerService struct {
	readFn  func(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error)
	writeFn func(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error)
	calls   int
}

func (m *mockInnerService) Read(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error) {
	m.calls++
	if m.readFn != nil {
		return m.readFn(ctx, req)
	}
	return models.ReadResponse{OK: true}, nil
}

func (m *mockInnerService) Write(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error) {
	m.calls++
	if m.writeFn != nil {
		return m.writeFn(ctx, req)
	}
	return models.WriteResponse{Updated: true}, nil
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

var fixedNow = time.Unix(1_700_000_000, 0)

func newValidationService(inner StorageService) StorageService {
	v := NewStorageValidationService(2 * time.Minute).(*StorageValidationService)
	v.now = func() time.Time { return fixedNow }
	return v.Wrap(inner)
}

func contentKeys(t *testing.T, key string) *crypto.ContentKeys {
	t.Helper()
	kc, err := crypto.NewKeychain(bytes.Repeat([]byte{7}, 32), "sandbox")
	require.NoError(t, err)
	keys, err := kc.ContentKeys(key)
	require.NoError(t, err)
	return keys
}

func signedRead(keys *crypto.ContentKeys, expiry int64) models.ReadRequest {
	return models.ReadRequest{
		Key:       base64.StdEncoding.EncodeToString(keys.Public),
		Signature: base64.StdEncoding.EncodeToString(keys.SignRead(uint32(expiry))),
		Time:      expiry,
	}
}

func signedWrite(keys *crypto.ContentKeys, box []byte, seq, expiry int64) models.WriteRequest {
	return models.WriteRequest{
		Key:       base64.StdEncoding.EncodeToString(keys.Public),
		Signature: base64.StdEncoding.EncodeToString(keys.SignWrite(box, uint32(seq), uint32(expiry))),
		Time:      expiry,
		Seq:       seq,
		Value:     base64.StdEncoding.EncodeToString(box),
	}
}

// ─────────────────────────────────────────────
// Read
// ─────────────────────────────────────────────

func TestValidationRead_ValidRequest_CallsInner(t *testing.T) {
	inner := &mockInnerService{}
	svc := newValidationService(inner)
	req := signedRead(contentKeys(t, "settings"), fixedNow.Add(time.Minute).Unix())

	resp, err := svc.Read(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, 1, inner.calls)
}

func TestValidationRead_Rejections(t *testing.T) {
	keys := contentKeys(t, "settings")
	other := contentKeys(t, "other")
	valid := fixedNow.Add(time.Minute).Unix()

	tests := []struct {
		name    string
		req     models.ReadRequest
		wantErr error
	}{
		{
			name:    "missing key",
			req:     models.ReadRequest{Signature: "c2ln", Time: valid},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "time equal to now",
			req:     signedRead(keys, fixedNow.Unix()),
			wantErr: ErrRequestExpired,
		},
		{
			name:    "time in the past",
			req:     signedRead(keys, fixedNow.Add(-time.Second).Unix()),
			wantErr: ErrRequestExpired,
		},
		{
			name:    "time beyond window",
			req:     signedRead(keys, fixedNow.Add(2*time.Minute+time.Second).Unix()),
			wantErr: ErrRequestExpired,
		},
		{
			name: "signature of another key",
			req: func() models.ReadRequest {
				r := signedRead(keys, valid)
				r.Signature = signedRead(other, valid).Signature
				return r
			}(),
			wantErr: ErrInvalidSignature,
		},
		{
			name: "signature for another time",
			req: func() models.ReadRequest {
				r := signedRead(keys, valid)
				r.Time = valid + 1
				return r
			}(),
			wantErr: ErrInvalidSignature,
		},
		{
			name: "key of wrong length",
			req: func() models.ReadRequest {
				r := signedRead(keys, valid)
				r.Key = base64.StdEncoding.EncodeToString([]byte("short"))
				return r
			}(),
			wantErr: ErrInvalidRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockInnerService{}
			svc := newValidationService(inner)

			_, err := svc.Read(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, inner.calls, "inner service must not be reached")
		})
	}
}

func TestValidationRead_WindowUpperBoundIsInclusive(t *testing.T) {
	inner := &mockInnerService{}
	svc := newValidationService(inner)
	req := signedRead(contentKeys(t, "settings"), fixedNow.Add(2*time.Minute).Unix())

	_, err := svc.Read(context.Background(), req)

	require.NoError(t, err)
}

// ─────────────────────────────────────────────
// Write
// ─────────────────────────────────────────────

func TestValidationWrite_ValidRequest_CallsInner(t *testing.T) {
	keys := contentKeys(t, "settings")
	box, err := keys.Seal([]byte(`{"theme":"dark"}`))
	require.NoError(t, err)

	var got models.WriteRequest
	inner := &mockInnerService{writeFn: func(_ context.Context, req models.WriteRequest) (models.WriteResponse, error) {
		got = req
		return models.WriteResponse{Updated: true, Current: models.RecordValue{Seq: 4}}, nil
	}}
	svc := newValidationService(inner)
	req := signedWrite(keys, box, 3, fixedNow.Add(time.Minute).Unix())

	resp, err := svc.Write(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, req, got)
}

func TestValidationWrite_Rejections(t *testing.T) {
	keys := contentKeys(t, "settings")
	box, err := keys.Seal([]byte("payload"))
	require.NoError(t, err)
	valid := fixedNow.Add(time.Minute).Unix()

	tests := []struct {
		name    string
		mutate  func(r *models.WriteRequest)
		wantErr error
	}{
		{
			name:    "seq differs from signed seq",
			mutate:  func(r *models.WriteRequest) { r.Seq = 4 },
			wantErr: ErrInvalidSignature,
		},
		{
			name: "value differs from signed value",
			mutate: func(r *models.WriteRequest) {
				r.Value = base64.StdEncoding.EncodeToString([]byte("tampered"))
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name:    "negative seq",
			mutate:  func(r *models.WriteRequest) { r.Seq = -1 },
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "seq beyond u32",
			mutate:  func(r *models.WriteRequest) { r.Seq = 1 << 33 },
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "value not base64",
			mutate:  func(r *models.WriteRequest) { r.Value = "%%%" },
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "expired",
			mutate:  func(r *models.WriteRequest) { r.Time = fixedNow.Unix() - 10 },
			wantErr: ErrRequestExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockInnerService{}
			svc := newValidationService(inner)
			req := signedWrite(keys, box, 3, valid)
			tt.mutate(&req)

			_, err := svc.Write(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, inner.calls)
		})
	}
}
