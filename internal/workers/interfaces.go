// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers groups the client's long-running background components so
// they are started and stopped as one unit.
package workers

import "context"

// Worker is a background component with a start/stop lifecycle.
// *watcher.Watcher satisfies it.
//
// Start must not block; Stop must block until the worker has exited and must
// be safe to call more than once.
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
