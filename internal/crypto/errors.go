// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	ErrInvalidMasterKey   = errors.New("master key must be at least 32 bytes")
	ErrInvalidNetwork     = errors.New("network label is empty")
	ErrEmptyRecordKey     = errors.New("record key is empty")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrDecrypt            = errors.New("decryption failed")
	ErrNonce              = errors.New("failed to generate nonce")
	ErrInvalidPublicKey   = errors.New("invalid public key")
)
