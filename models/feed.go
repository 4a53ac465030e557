// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// BlockChanged is one message of the global block feed
// (/block/watch/changed). Pointer fields distinguish a missing field from a
// zero value during validation.
type BlockChanged struct {
	// Seqno is the masterchain block sequence number.
	Seqno *int64 `json:"seqno" validate:"required"`

	// Changed maps every account touched by the block to its new last
	// transaction reference.
	Changed map[string]AccountChange `json:"changed" validate:"required,dive"`

	// LastUtime is the block's unix time at the source.
	LastUtime *int64 `json:"lastUtime" validate:"required"`
}

// AccountChange references the last transaction of an account.
type AccountChange struct {
	Hash string `json:"hash" validate:"required"`
	LT   string `json:"lt" validate:"required,numeric"`
}

// RPCRequest is a JSON-RPC 2.0 request sent over a push feed.
type RPCRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// RPCEncoding is the options object of a subscribe request.
type RPCEncoding struct {
	Encoding string `json:"encoding"`
}

// AccountNotification is pushed by a single-account feed after every change
// of the subscribed account.
type AccountNotification struct {
	JSONRPC string                    `json:"jsonrpc" validate:"required,eq=2.0"`
	Method  string                    `json:"method" validate:"required,eq=accountNotification"`
	Params  AccountNotificationParams `json:"params"`
}

// AccountNotificationParams carries the notification payload.
type AccountNotificationParams struct {
	Subscription int64                     `json:"subscription"`
	Result       AccountNotificationResult `json:"result"`
}

// AccountNotificationResult is the slot-stamped account value.
type AccountNotificationResult struct {
	Context struct {
		Slot int64 `json:"slot" validate:"gte=0"`
	} `json:"context"`
	Value json.RawMessage `json:"value"`
}

// RPCSubscribeResult is the response to a subscribe request.
type RPCSubscribeResult struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Result  int64  `json:"result"`
}
