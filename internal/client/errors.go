// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

var (
	ErrMalformedFeedMessage = errors.New("malformed account feed message")
	ErrInvalidMasterKey     = errors.New("invalid master key")
	ErrNoAddresses          = errors.New("no account addresses configured")
)
