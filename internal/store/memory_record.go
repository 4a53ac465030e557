// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/models"
	memdb "github.com/hashicorp/go-memdb"
)

const tblRecords = "records"

var recordsSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblRecords: {
			Name: tblRecords,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Key"},
				},
			},
		},
	},
}

// memoryRecordRepository is an in-memory [RecordRepository]. go-memdb
// serializes write transactions, which makes the compare-and-swap atomic.
type memoryRecordRepository struct {
	db     *memdb.MemDB
	logger *logger.Logger
}

// NewMemoryRecordRepository creates an empty in-memory record repository.
func NewMemoryRecordRepository(log *logger.Logger) (RecordRepository, error) {
	db, err := memdb.NewMemDB(recordsSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}

	return &memoryRecordRepository{db: db, logger: log}, nil
}

// Read implements [RecordRepository].
func (r *memoryRecordRepository) Read(_ context.Context, key string) (models.StoredRecord, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblRecords, "id", key)
	if err != nil {
		return models.StoredRecord{}, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}
	if raw == nil {
		return models.StoredRecord{Key: key}, nil
	}

	return cloneRecord(raw.(*models.StoredRecord)), nil
}

// CompareAndSwap implements [RecordRepository].
func (r *memoryRecordRepository) CompareAndSwap(_ context.Context, key string, seq int64, value []byte) (bool, models.StoredRecord, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblRecords, "id", key)
	if err != nil {
		return false, models.StoredRecord{}, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}

	current := models.StoredRecord{Key: key}
	if raw != nil {
		current = cloneRecord(raw.(*models.StoredRecord))
	}
	if current.Seq != seq {
		return false, current, nil
	}

	next := &models.StoredRecord{Key: key, Seq: seq + 1, Value: bytes.Clone(value)}
	if err := txn.Insert(tblRecords, next); err != nil {
		return false, models.StoredRecord{}, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}
	txn.Commit()

	r.logger.Debug().
		Str("func", "*memoryRecordRepository.CompareAndSwap").
		Int64("seq", next.Seq).
		Msg("record written")

	return true, cloneRecord(next), nil
}

func cloneRecord(r *models.StoredRecord) models.StoredRecord {
	return models.StoredRecord{Key: r.Key, Seq: r.Seq, Value: bytes.Clone(r.Value)}
}
