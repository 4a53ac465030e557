// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cloud

import "errors"

var (
	ErrMalformedResponse = errors.New("malformed storage response")
	ErrKeyDerivation     = errors.New("failed to derive record keys")
	ErrSeal              = errors.New("failed to encrypt record")
	ErrOpen              = errors.New("failed to decrypt record")
	ErrUpdateFn          = errors.New("update function failed")
	ErrRemoteDocument    = errors.New("remote document is corrupt")
	ErrTypeMismatch      = errors.New("cloud value requested with a different type")
	ErrActorID           = errors.New("failed to load device actor id")
)
