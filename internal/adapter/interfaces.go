// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the HTTP collaborators of the sync layer: the
// encrypted record store and the chain's account API.
//
// Responses are decoded and checked against the `validate` tags of the models
// package; a body that fails either step is reported as
// [ErrMalformedResponse]. Non-2xx statuses are mapped to the sentinel errors in
// errors.go by mapHTTPError so callers can use [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// StorageAdapter talks to the encrypted record store.
type StorageAdapter interface {
	// ReadRecord sends a signed POST /storage/read.
	ReadRecord(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error)

	// WriteRecord sends a signed POST /storage/write. A rejected
	// compare-and-swap is not an error: the response has Updated == false and
	// carries the current state.
	WriteRecord(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error)
}

// ChainAdapter fetches account state from the chain's HTTP API.
type ChainAdapter interface {
	// LatestBlock returns the seqno of the newest masterchain block.
	LatestBlock(ctx context.Context) (int64, error)

	// AccountLite returns the compact state of address at block seqno.
	AccountLite(ctx context.Context, seqno int64, address string) (models.AccountLite, error)
}
