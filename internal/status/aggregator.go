// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package status aggregates the connecting/updating activity of every watcher
// and sync task that belongs to one synchronization root into a single
// indicator.
//
// Each participant takes a lock with BeginConnecting or BeginUpdating and
// calls the returned release function once it settles. The aggregator only
// counts outstanding locks, so any number of tasks can be in flight while the
// indicator stays a single value.
package status

import (
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/observer"
	"github.com/prometheus/client_golang/prometheus"
)

// State is the collapsed indicator value.
type State string

const (
	// StateOnline means nothing is connecting or updating.
	StateOnline State = "online"
	// StateConnecting means at least one watcher has not yet received its
	// first message on the current connection.
	StateConnecting State = "connecting"
	// StateUpdating means at least one sync task is running.
	StateUpdating State = "updating"
)

// Snapshot is a point-in-time copy of the aggregator counters.
type Snapshot struct {
	Connecting int
	Updating   int
}

// State collapses the counters. Connecting wins over updating.
func (s Snapshot) State() State {
	switch {
	case s.Connecting > 0:
		return StateConnecting
	case s.Updating > 0:
		return StateUpdating
	default:
		return StateOnline
	}
}

// Aggregator counts outstanding connecting and updating locks.
type Aggregator struct {
	mu        sync.Mutex
	snapshot  Snapshot
	observers observer.List[Snapshot]

	connectingGauge prometheus.Gauge
	updatingGauge   prometheus.Gauge
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithRegisterer exports the counters as the ledger_sync_connecting and
// ledger_sync_updating gauges.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *Aggregator) {
		a.connectingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger_sync",
			Name:      "connecting",
			Help:      "Number of stream watchers waiting for their first message.",
		})
		a.updatingGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledger_sync",
			Name:      "updating",
			Help:      "Number of sync tasks currently running.",
		})
		reg.MustRegister(a.connectingGauge, a.updatingGauge)
	}
}

// New creates an empty aggregator.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BeginConnecting takes a connecting lock. The returned release function may
// be called any number of times; only the first call counts.
func (a *Aggregator) BeginConnecting() func() {
	return a.begin(func(s *Snapshot, delta int) { s.Connecting += delta })
}

// BeginUpdating takes an updating lock. See BeginConnecting.
func (a *Aggregator) BeginUpdating() func() {
	return a.begin(func(s *Snapshot, delta int) { s.Updating += delta })
}

func (a *Aggregator) begin(apply func(*Snapshot, int)) func() {
	a.change(apply, 1)

	var once sync.Once
	return func() {
		once.Do(func() { a.change(apply, -1) })
	}
}

func (a *Aggregator) change(apply func(*Snapshot, int), delta int) {
	a.mu.Lock()
	apply(&a.snapshot, delta)
	snap := a.snapshot
	if a.connectingGauge != nil {
		a.connectingGauge.Set(float64(snap.Connecting))
		a.updatingGauge.Set(float64(snap.Updating))
	}
	a.mu.Unlock()

	a.observers.Notify(snap)
}

// Snapshot returns the current counters.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot
}

// State returns the collapsed indicator.
func (a *Aggregator) State() State {
	return a.Snapshot().State()
}

// Subscribe registers fn to be called with the new snapshot after every
// counter change. The returned function removes the subscription.
func (a *Aggregator) Subscribe(fn func(Snapshot)) func() {
	return a.observers.Subscribe(fn)
}
