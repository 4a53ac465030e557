// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run starts background sync and blocks until ctx is done or the monitor
	// is closed.
	Run(ctx context.Context) error
	// Close stops every worker and releases local storage.
	Close() error
}
