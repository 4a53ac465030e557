// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package watcher

import "errors"

var (
	// ErrDial wraps transport errors returned while opening a connection.
	ErrDial = errors.New("error dialing push feed")

	// ErrConnectTimeout is logged when a connection does not open in time.
	ErrConnectTimeout = errors.New("push feed connect timeout")

	// ErrMessageTimeout is logged when the watchdog fires on an open
	// connection.
	ErrMessageTimeout = errors.New("push feed message timeout")
)
