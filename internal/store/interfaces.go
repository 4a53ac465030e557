// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// RecordRepository keeps the server side of the encrypted record store.
// Records are opaque: the server never sees plaintext.
type RecordRepository interface {
	// Read returns the record stored under key. A missing record is returned
	// as seq 0 with a nil value.
	Read(ctx context.Context, key string) (models.StoredRecord, error)

	// CompareAndSwap stores value under key if the current sequence equals
	// seq and increments the sequence. It always returns the resulting
	// current state and whether the write was applied.
	CompareAndSwap(ctx context.Context, key string, seq int64, value []byte) (updated bool, current models.StoredRecord, err error)
}
