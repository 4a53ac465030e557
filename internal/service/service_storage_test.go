// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/mock"
	"github.com/MKhiriev/go-ledger-sync/internal/store"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testKey = "AAECAwQFBgcICQoLDA0ODxAREhMUFRYXGBkaGxwdHh8="

// ─────────────────────────────────────────────
// Read
// ─────────────────────────────────────────────

func TestStorageRead_ExistingRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRecordRepository(ctrl)
	repo.EXPECT().Read(gomock.Any(), testKey).
		Return(models.StoredRecord{Key: testKey, Seq: 2, Value: []byte("box")}, nil)

	svc := NewStorageService(repo, logger.Nop())

	resp, err := svc.Read(context.Background(), models.ReadRequest{Key: testKey})

	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, int64(2), resp.Value.Seq)
	require.NotNil(t, resp.Value.Value)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("box")), *resp.Value.Value)
}

func TestStorageRead_MissingRecord_NullValue(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRecordRepository(ctrl)
	repo.EXPECT().Read(gomock.Any(), testKey).Return(models.StoredRecord{Key: testKey}, nil)

	svc := NewStorageService(repo, logger.Nop())

	resp, err := svc.Read(context.Background(), models.ReadRequest{Key: testKey})

	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.Value.Seq)
	assert.Nil(t, resp.Value.Value)
}

func TestStorageRead_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRecordRepository(ctrl)
	repo.EXPECT().Read(gomock.Any(), testKey).Return(models.StoredRecord{}, store.ErrExecutingQuery)

	svc := NewStorageService(repo, logger.Nop())

	_, err := svc.Read(context.Background(), models.ReadRequest{Key: testKey})

	assert.ErrorIs(t, err, store.ErrExecutingQuery)
}

// ─────────────────────────────────────────────
// Write
// ─────────────────────────────────────────────

func TestStorageWrite_Applied(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRecordRepository(ctrl)
	repo.EXPECT().CompareAndSwap(gomock.Any(), testKey, int64(0), []byte("box")).
		Return(true, models.StoredRecord{Key: testKey, Seq: 1, Value: []byte("box")}, nil)

	svc := NewStorageService(repo, logger.Nop())

	resp, err := svc.Write(context.Background(), models.WriteRequest{
		Key:   testKey,
		Seq:   0,
		Value: base64.StdEncoding.EncodeToString([]byte("box")),
	})

	require.NoError(t, err)
	assert.True(t, resp.Updated)
	assert.Equal(t, int64(1), resp.Current.Seq)
}

func TestStorageWrite_Rejected_ReturnsWinner(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRecordRepository(ctrl)
	repo.EXPECT().CompareAndSwap(gomock.Any(), testKey, int64(1), []byte("mine")).
		Return(false, models.StoredRecord{Key: testKey, Seq: 2, Value: []byte("theirs")}, nil)

	svc := NewStorageService(repo, logger.Nop())

	resp, err := svc.Write(context.Background(), models.WriteRequest{
		Key:   testKey,
		Seq:   1,
		Value: base64.StdEncoding.EncodeToString([]byte("mine")),
	})

	require.NoError(t, err)
	assert.False(t, resp.Updated)
	assert.Equal(t, int64(2), resp.Current.Seq)
	require.NotNil(t, resp.Current.Value)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("theirs")), *resp.Current.Value)
}

func TestStorageWrite_Errors(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockRecordRepository(ctrl)
	repoErr := errors.New("boom")
	repo.EXPECT().CompareAndSwap(gomock.Any(), testKey, int64(0), gomock.Any()).
		Return(false, models.StoredRecord{}, repoErr)

	svc := NewStorageService(repo, logger.Nop())

	_, err := svc.Write(context.Background(), models.WriteRequest{Key: testKey, Value: "Ym94"})
	assert.ErrorIs(t, err, repoErr)

	_, err = svc.Write(context.Background(), models.WriteRequest{Key: "%%%", Value: "Ym94"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
