// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package task runs invalidation-driven background work.
//
// A Task owns one handler. Invalidate schedules it: when the task is idle the
// handler starts right away; when it is already running the task only bumps
// its generation, and exactly one more run follows the current one no matter
// how many invalidations arrived in between. At most one run of a task is in
// flight at any time.
package task

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/sethvargo/go-retry"
)

// Handler is the body of a Task.
type Handler func(ctx context.Context) error

// Option configures a Task.
type Option func(*Task)

// WithStatus brackets every run with an updating lock on agg.
func WithStatus(agg *status.Aggregator) Option {
	return func(t *Task) {
		t.status = agg
	}
}

// WithRetry retries a failing handler with capped exponential backoff until it
// succeeds or the task is stopped.
func WithRetry(base, ceiling time.Duration) Option {
	return func(t *Task) {
		t.retryBase = base
		t.retryCap = ceiling
	}
}

// WithLogger sets the task logger.
func WithLogger(log *logger.Logger) Option {
	return func(t *Task) {
		t.logger = log
	}
}

type waiter struct {
	generation uint64
	done       chan error
}

// Task is a coalescing runner for a single handler.
type Task struct {
	key     string
	handler Handler
	logger  *logger.Logger
	status  *status.Aggregator

	retryBase time.Duration
	retryCap  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	running    bool
	stopped    bool
	generation uint64
	served     uint64
	lastErr    error
	waiters    []waiter
	wg         sync.WaitGroup
}

// New creates an idle task. The handler receives a context that is cancelled
// when ctx is done or Stop is called.
func New(ctx context.Context, key string, handler Handler, opts ...Option) *Task {
	t := &Task{
		key:     key,
		handler: handler,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = &logger.Logger{Logger: t.logger.WithComponent("task").With().Str("task", key).Logger()}
	t.ctx, t.cancel = context.WithCancel(ctx)

	return t
}

// Key returns the task name.
func (t *Task) Key() string {
	return t.key
}

// Invalidate marks the task dirty and schedules a run. It never blocks.
func (t *Task) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.invalidateLocked()
}

// InvalidateAndAwait invalidates the task and waits until a run that started
// after the call has finished. It returns that run's error, ErrStopped when
// the task stops first, or ctx.Err().
func (t *Task) InvalidateAndAwait(ctx context.Context) error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return ErrStopped
	}
	t.invalidateLocked()
	w := waiter{generation: t.generation, done: make(chan error, 1)}
	t.waiters = append(t.waiters, w)
	t.mu.Unlock()

	select {
	case err := <-w.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop prevents new runs, cancels the running handler's context and waits for
// it to return. Calling Stop more than once is safe.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.stopped {
		t.stopped = true
		t.cancel()
	}
	t.mu.Unlock()

	t.wg.Wait()

	t.mu.Lock()
	t.resolveLocked(^uint64(0), ErrStopped)
	t.mu.Unlock()
}

// Err returns the error of the last finished run.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastErr
}

// Dirty reports whether an invalidation has not been served by a successful
// run yet.
func (t *Task) Dirty() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation != t.served || t.lastErr != nil
}

func (t *Task) invalidateLocked() {
	if t.stopped {
		return
	}
	t.generation++
	if t.running {
		return
	}
	t.running = true
	t.wg.Add(1)
	go t.loop()
}

func (t *Task) loop() {
	defer t.wg.Done()

	for {
		t.mu.Lock()
		if t.stopped || t.served == t.generation {
			t.running = false
			t.mu.Unlock()
			return
		}
		gen := t.generation
		t.served = gen
		t.mu.Unlock()

		err := t.run()

		t.mu.Lock()
		t.lastErr = err
		t.resolveLocked(gen, err)
		t.mu.Unlock()
	}
}

func (t *Task) run() error {
	if t.status != nil {
		release := t.status.BeginUpdating()
		defer release()
	}

	started := time.Now()
	var err error
	if t.retryBase > 0 {
		err = t.runWithRetry()
	} else {
		err = t.invoke(t.ctx)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) && t.ctx.Err() != nil {
			t.logger.Debug().Str("func", "Task.run").Msg("run cancelled")
			return err
		}
		t.logger.Error().Err(err).Str("func", "Task.run").Msg("run failed")
		return err
	}

	t.logger.Debug().Dur("elapsed", time.Since(started)).Msg("run finished")
	return nil
}

func (t *Task) runWithRetry() error {
	backoff := retry.NewExponential(t.retryBase)
	if t.retryCap > 0 {
		backoff = retry.WithCappedDuration(t.retryCap, backoff)
	}

	attempt := 0
	return retry.Do(t.ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := t.invoke(ctx); err != nil {
			t.logger.Warn().Err(err).Int("attempt", attempt).Msg("run failed, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
}

// invoke calls the handler and converts a panic into an error so a faulty
// handler cannot take down the process.
func (t *Task) invoke(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return t.handler(ctx)
}

// resolveLocked completes every waiter whose generation is covered by a run
// that served gen.
func (t *Task) resolveLocked(gen uint64, err error) {
	kept := t.waiters[:0]
	for _, w := range t.waiters {
		if w.generation <= gen {
			w.done <- err
			continue
		}
		kept = append(kept, w)
	}
	t.waiters = kept
}
