// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedHandler blocks every run until the test sends on release and reports
// run starts on started.
type gatedHandler struct {
	calls   atomic.Int64
	started chan struct{}
	release chan struct{}
}

func newGatedHandler() *gatedHandler {
	return &gatedHandler{
		started: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedHandler) handle(ctx context.Context) error {
	g.calls.Add(1)
	g.started <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func waitStarted(t *testing.T, g *gatedHandler) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not start")
	}
}

// ── coalescing ────────────────────────────────────────────────────────────────

func TestTask_InvalidationsDuringRunCoalesceIntoOneRerun(t *testing.T) {
	g := newGatedHandler()
	tk := New(context.Background(), "coalesce", g.handle)
	defer tk.Stop()

	tk.Invalidate()
	waitStarted(t, g)

	tk.Invalidate()
	tk.Invalidate()
	tk.Invalidate()

	g.release <- struct{}{}
	waitStarted(t, g)
	g.release <- struct{}{}

	require.Eventually(t, func() bool { return !tk.Dirty() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(2), g.calls.Load())
}

func TestTask_TripleInvalidateOnIdleRunsOnce(t *testing.T) {
	var calls atomic.Int64
	tk := New(context.Background(), "idle", func(context.Context) error {
		calls.Add(1)
		return nil
	})
	defer tk.Stop()

	// the spawned loop cannot read the generation until all three land
	tk.mu.Lock()
	tk.invalidateLocked()
	tk.invalidateLocked()
	tk.invalidateLocked()
	tk.mu.Unlock()

	require.Eventually(t, func() bool {
		tk.mu.Lock()
		defer tk.mu.Unlock()
		return !tk.running
	}, time.Second, 5*time.Millisecond)

	assert.False(t, tk.Dirty())
	assert.Equal(t, int64(1), calls.Load())
}

func TestTask_InvalidateAndAwait_RunsOnce(t *testing.T) {
	var calls atomic.Int64
	tk := New(context.Background(), "single", func(context.Context) error {
		calls.Add(1)
		return nil
	})
	defer tk.Stop()

	require.NoError(t, tk.InvalidateAndAwait(context.Background()))
	assert.Equal(t, int64(1), calls.Load())
	assert.False(t, tk.Dirty())
}

func TestTask_NeverRunsConcurrently(t *testing.T) {
	var inFlight, maxInFlight atomic.Int64
	tk := New(context.Background(), "exclusive", func(context.Context) error {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		inFlight.Add(-1)
		return nil
	})
	defer tk.Stop()

	for i := 0; i < 50; i++ {
		tk.Invalidate()
	}
	require.NoError(t, tk.InvalidateAndAwait(context.Background()))

	assert.Equal(t, int64(1), maxInFlight.Load())
}

// ── await ─────────────────────────────────────────────────────────────────────

func TestTask_InvalidateAndAwait_WaitsForFreshRun(t *testing.T) {
	g := newGatedHandler()
	tk := New(context.Background(), "await", g.handle)
	defer tk.Stop()

	tk.Invalidate()
	waitStarted(t, g)

	done := make(chan error, 1)
	go func() { done <- tk.InvalidateAndAwait(context.Background()) }()

	// finishing the run that was already in flight must not resolve the waiter
	g.release <- struct{}{}
	waitStarted(t, g)
	select {
	case <-done:
		t.Fatal("waiter resolved by a run that started before the call")
	default:
	}

	g.release <- struct{}{}
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("waiter was not resolved")
	}
}

func TestTask_InvalidateAndAwait_ReturnsHandlerError(t *testing.T) {
	boom := errors.New("boom")
	tk := New(context.Background(), "failing", func(context.Context) error { return boom })
	defer tk.Stop()

	err := tk.InvalidateAndAwait(context.Background())

	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, tk.Err(), boom)
	assert.True(t, tk.Dirty())
}

func TestTask_InvalidateAndAwait_ContextCancelled(t *testing.T) {
	g := newGatedHandler()
	tk := New(context.Background(), "ctx", g.handle)
	defer tk.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := tk.InvalidateAndAwait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTask_InvalidateAndAwait_AfterStop(t *testing.T) {
	tk := New(context.Background(), "stopped", func(context.Context) error { return nil })
	tk.Stop()

	assert.ErrorIs(t, tk.InvalidateAndAwait(context.Background()), ErrStopped)
}

// ── failures ──────────────────────────────────────────────────────────────────

func TestTask_FailedRunStaysDirtyUntilNextSuccess(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	tk := New(context.Background(), "dirty", func(context.Context) error {
		if fail.Load() {
			return errors.New("unavailable")
		}
		return nil
	})
	defer tk.Stop()

	require.Error(t, tk.InvalidateAndAwait(context.Background()))
	assert.True(t, tk.Dirty())

	fail.Store(false)
	require.NoError(t, tk.InvalidateAndAwait(context.Background()))
	assert.False(t, tk.Dirty())
}

func TestTask_WithRetry_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int64
	tk := New(context.Background(), "retry", func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	}, WithRetry(time.Millisecond, 4*time.Millisecond))
	defer tk.Stop()

	require.NoError(t, tk.InvalidateAndAwait(context.Background()))
	assert.Equal(t, int64(3), calls.Load())
}

func TestTask_WithRetry_StopsOnTaskStop(t *testing.T) {
	tk := New(context.Background(), "retry-stop", func(context.Context) error {
		return errors.New("down")
	}, WithRetry(5*time.Millisecond, 10*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- tk.InvalidateAndAwait(context.Background()) }()

	time.Sleep(30 * time.Millisecond)
	tk.Stop()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not stop")
	}
}

func TestTask_PanicIsReportedAsError(t *testing.T) {
	tk := New(context.Background(), "panic", func(context.Context) error {
		panic("bad state")
	})
	defer tk.Stop()

	err := tk.InvalidateAndAwait(context.Background())

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad state", pe.Value)
}

// ── stop ──────────────────────────────────────────────────────────────────────

func TestTask_StopCancelsRunAndPreventsNewRuns(t *testing.T) {
	g := newGatedHandler()
	tk := New(context.Background(), "stop", g.handle)

	tk.Invalidate()
	waitStarted(t, g)

	tk.Stop()
	tk.Stop()

	tk.Invalidate()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int64(1), g.calls.Load())
}

func TestTask_ParentContextCancelsHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := newGatedHandler()
	tk := New(ctx, "parent", g.handle)
	defer tk.Stop()

	done := make(chan error, 1)
	go func() { done <- tk.InvalidateAndAwait(context.Background()) }()
	waitStarted(t, g)

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("handler ignored parent cancellation")
	}
}

// ── status ────────────────────────────────────────────────────────────────────

func TestTask_WithStatus_ReportsUpdating(t *testing.T) {
	agg := status.New()
	g := newGatedHandler()
	tk := New(context.Background(), "status", g.handle, WithStatus(agg))
	defer tk.Stop()

	assert.Equal(t, status.StateOnline, agg.State())

	tk.Invalidate()
	waitStarted(t, g)
	assert.Equal(t, status.StateUpdating, agg.State())

	g.release <- struct{}{}
	require.Eventually(t, func() bool { return agg.State() == status.StateOnline }, time.Second, 5*time.Millisecond)
}
