// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_FirstRetryIsAtLeastFloor(t *testing.T) {
	b := DefaultBackoff()

	for i := 0; i < 100; i++ {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 2*time.Second)
	}
}

func TestBackoff_NonDecreasingUpToCeiling(t *testing.T) {
	b := DefaultBackoff()

	for round := 0; round < 50; round++ {
		prev := time.Duration(0)
		for failures := 1; failures <= 60; failures++ {
			d := b.Delay(failures)
			assert.GreaterOrEqual(t, d, prev, "failures=%d", failures)
			assert.LessOrEqual(t, d, 5*time.Second, "failures=%d", failures)
			prev = d
		}
	}
}

func TestBackoff_ReachesCeiling(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, 5*time.Second, b.Delay(10))
	assert.Equal(t, 5*time.Second, b.Delay(50))
	assert.Equal(t, 5*time.Second, b.Delay(1000))
}

func TestBackoff_DeterministicJitter(t *testing.T) {
	b := Backoff{
		Floor:       100 * time.Millisecond,
		Ceiling:     1 * time.Second,
		MaxFailures: 50,
		jitter:      func(n int64) int64 { return n - 1 },
	}

	tests := []struct {
		failures int
		expected time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 200*time.Millisecond - 1},
		{2, 400*time.Millisecond - 1},
		{3, 800*time.Millisecond - 1},
		{4, 1 * time.Second},
		{5, 1 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, b.Delay(tt.failures), "failures=%d", tt.failures)
	}
}

func TestBackoff_Cap(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, 3, b.Cap(3))
	assert.Equal(t, 50, b.Cap(51))
	assert.Equal(t, 50, b.Cap(1000))

	unbounded := Backoff{Floor: time.Millisecond, Ceiling: time.Second}
	assert.Equal(t, 1000, unbounded.Cap(1000))
}
