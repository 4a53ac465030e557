// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"fmt"

	memdb "github.com/hashicorp/go-memdb"
)

const tblKV = "kv"

type kvEntry struct {
	Key   string
	Value []byte
}

var kvSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblKV: {
			Name: tblKV,
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

// MemoryKV is a volatile local key-value store.
type MemoryKV struct {
	db *memdb.MemDB
}

// NewMemoryKV creates an empty MemoryKV.
func NewMemoryKV() (*MemoryKV, error) {
	db, err := memdb.NewMemDB(kvSchema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}
	return &MemoryKV{db: db}, nil
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblKV, "id", key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}
	if raw == nil {
		return nil, false, nil
	}

	return bytes.Clone(raw.(*kvEntry).Value), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(tblKV, &kvEntry{Key: key, Value: bytes.Clone(value)}); err != nil {
		return fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}
	txn.Commit()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tblKV, "id", key); err != nil {
		return fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}
	txn.Commit()
	return nil
}

// Keys returns keys starting with prefix in key order.
func (m *MemoryKV) Keys(_ context.Context, prefix string) ([]string, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tblKV, "id_prefix", prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMemoryTxn, err)
	}

	var keys []string
	for raw := it.Next(); raw != nil; raw = it.Next() {
		keys = append(keys, raw.(*kvEntry).Key)
	}
	return keys, nil
}
