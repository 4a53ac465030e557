// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// LastBlock is returned by GET /block/latest.
type LastBlock struct {
	Last struct {
		Seqno int64 `json:"seqno" validate:"gt=0"`
	} `json:"last"`
}

// AccountLiteResponse is returned by GET /block/{seqno}/{address}/lite.
type AccountLiteResponse struct {
	Account AccountLite `json:"account"`
}

// AccountLite is the compact account state at a given block.
type AccountLite struct {
	Balance struct {
		Coins string `json:"coins" validate:"required,numeric"`
	} `json:"balance"`
	Last  *TransactionRef `json:"last"`
	State struct {
		Type string `json:"type" validate:"required,oneof=uninit active frozen"`
	} `json:"state"`
}

// TransactionRef points at an account's last transaction.
type TransactionRef struct {
	LT   string `json:"lt"`
	Hash string `json:"hash"`
}

// AccountState is the persisted account snapshot kept per address.
type AccountState struct {
	Address string          `json:"address"`
	Seqno   int64           `json:"seqno"`
	Balance string          `json:"balance"`
	Status  string          `json:"status"`
	Last    *TransactionRef `json:"last,omitempty"`
}

// WalletView is derived from AccountState.
type WalletView struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
	Active  bool   `json:"active"`
	// SyncedAt is the block seqno the view was derived from.
	SyncedAt int64 `json:"syncedAt"`
}

// Settings is the cloud-synced user settings document projection.
type Settings struct {
	Currency string `json:"currency"`
	Theme    string `json:"theme"`
}

// CounterValue is the projection of a counter document.
type CounterValue struct {
	Counter int64 `json:"counter"`
}
