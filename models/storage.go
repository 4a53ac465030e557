// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Record is a decoded remote record. Value is nil when the key has never been
// written.
type Record struct {
	Seq   int64
	Value []byte
}

// StoredRecord is a record as kept by the server: the key is the base64
// ed25519 public key and Value is the opaque ciphertext.
type StoredRecord struct {
	Key   string
	Seq   int64
	Value []byte
}

// ReadRequest is the body of POST /storage/read.
type ReadRequest struct {
	// Key is the base64 ed25519 public key of the record.
	Key string `json:"key" validate:"required,base64"`
	// Signature is the base64 signature over key | time.
	Signature string `json:"signature" validate:"required,base64"`
	// Time is the unix expiry of the request.
	Time int64 `json:"time" validate:"required,gt=0"`
}

// WriteRequest is the body of POST /storage/write.
type WriteRequest struct {
	Key       string `json:"key" validate:"required,base64"`
	Signature string `json:"signature" validate:"required,base64"`
	Time      int64  `json:"time" validate:"required,gt=0"`
	// Seq is the sequence the writer last observed.
	Seq int64 `json:"seq" validate:"gte=0"`
	// Value is the base64 nonce | ciphertext.
	Value string `json:"value" validate:"required,base64"`
}

// RecordValue is the wire form of a record. Value is base64 or null.
type RecordValue struct {
	Seq   int64   `json:"seq" validate:"gte=0"`
	Value *string `json:"value" validate:"omitempty,base64"`
}

// ReadResponse is returned by POST /storage/read.
type ReadResponse struct {
	OK    bool        `json:"ok" validate:"required"`
	Value RecordValue `json:"value"`
}

// WriteResponse is returned by POST /storage/write. When Updated is false,
// Current holds the state that won.
type WriteResponse struct {
	Updated bool        `json:"updated"`
	Current RecordValue `json:"current"`
}
