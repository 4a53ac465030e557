// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package persist keeps derived client state in a local key-value store and
// notifies dependents when it changes.
package persist

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=kv.go -destination=../mock/kv_mock.go -package=mock

// KV is the local byte store behind persisted items.
type KV interface {
	// Get returns the stored bytes and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Codec converts item values to and from their stored form.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// JSONCodec stores values as JSON.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var v T
	err := json.Unmarshal(data, &v)
	return v, err
}

// BytesCodec stores raw bytes unchanged.
type BytesCodec struct{}

func (BytesCodec) Encode(v []byte) ([]byte, error) {
	return v, nil
}

func (BytesCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}
