// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package watcher

import (
	"math/rand/v2"
	"time"
)

// Default reconnect curve.
const (
	DefaultBackoffFloor   = time.Second
	DefaultBackoffCeiling = 5 * time.Second
	DefaultMaxFailures    = 50
)

// Backoff computes the reconnect delay after a number of consecutive failures.
//
// The base delay doubles from Floor with every failure and stops at Ceiling.
// Jitter is drawn from [0, base(n+1)-base(n)), so a delay never reaches the
// next step's base and the curve stays non-decreasing in the failure count.
type Backoff struct {
	Floor       time.Duration
	Ceiling     time.Duration
	MaxFailures int

	// jitter returns a value in [0, n). Defaults to math/rand/v2.
	jitter func(n int64) int64
}

// DefaultBackoff returns the 1s..5s curve capped at 50 failures.
func DefaultBackoff() Backoff {
	return Backoff{
		Floor:       DefaultBackoffFloor,
		Ceiling:     DefaultBackoffCeiling,
		MaxFailures: DefaultMaxFailures,
	}
}

// Cap bounds a failure counter for curve purposes.
func (b Backoff) Cap(failures int) int {
	if b.MaxFailures > 0 {
		return min(failures, b.MaxFailures)
	}
	return failures
}

// Delay returns the jittered delay for the given failure count.
func (b Backoff) Delay(failures int) time.Duration {
	failures = b.Cap(failures)

	base := b.base(failures)
	spread := int64(b.base(failures+1) - base)
	if spread <= 0 {
		return base
	}

	jitter := b.jitter
	if jitter == nil {
		jitter = rand.Int64N
	}

	return base + time.Duration(jitter(spread))
}

func (b Backoff) base(failures int) time.Duration {
	floor := b.Floor
	if floor <= 0 {
		floor = DefaultBackoffFloor
	}
	ceiling := max(b.Ceiling, floor)

	delay := floor
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}

	return min(delay, ceiling)
}
