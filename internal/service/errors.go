// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid storage request")
	ErrInvalidSignature = errors.New("invalid request signature")
	ErrRequestExpired   = errors.New("request time is outside the accepted window")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")
)
