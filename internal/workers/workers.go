// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
)

type Workers struct {
	mu      sync.Mutex
	workers []Worker
}

func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Add registers worker. Workers added after Start are not started.
func (w *Workers) Add(worker Worker) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.workers = append(w.workers, worker)
}

// Start starts every worker in registration order.
func (w *Workers) Start(ctx context.Context) {
	for _, worker := range w.snapshot() {
		worker.Start(ctx)
	}
}

// Stop stops every worker in reverse registration order.
func (w *Workers) Stop() {
	ws := w.snapshot()
	for i := len(ws) - 1; i >= 0; i-- {
		ws[i].Stop()
	}
}

// Len returns the number of registered workers.
func (w *Workers) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.workers)
}

func (w *Workers) snapshot() []Worker {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Worker(nil), w.workers...)
}
