// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package watcher

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/gorilla/websocket"
)

// Message types written to a [Conn].
const (
	TextMessage = websocket.TextMessage
	PingMessage = websocket.PingMessage
)

// Default timeouts.
const (
	DefaultConnectTimeout      = 5 * time.Second
	DefaultBlockMessageTimeout = 15 * time.Second
	AccountMessageTimeout      = 60 * time.Second
)

// State is the connection state of a Watcher.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

type eventKind int

const (
	eventOpen eventKind = iota
	eventMessage
	eventClosed
)

// event is produced by a connection goroutine and stamped with the
// generation of the attempt that started it.
type event struct {
	gen  uint64
	kind eventKind
	conn Conn
	data []byte
	err  error
}

type outcome int

const (
	outcomeHealthyClose outcome = iota
	outcomeFailure
	outcomeStopped
)

// Watcher owns one persistent connection to a push endpoint.
type Watcher struct {
	name     string
	endpoint string
	dialer   Dialer
	handler  Handler

	connectTimeout time.Duration
	messageTimeout time.Duration
	pingInterval   time.Duration
	backoff        Backoff
	subscribe      []byte
	status         *status.Aggregator
	logger         *logger.Logger

	// events is shared by all attempts; the generation guard filters it.
	events chan event

	mu         sync.Mutex
	state      State
	failures   int
	generation uint64
	started    bool

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithConnectTimeout overrides the 5s connect timeout.
func WithConnectTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.connectTimeout = d }
}

// WithMessageTimeout sets the watchdog window (15s for block feeds, 60s for
// single-account feeds).
func WithMessageTimeout(d time.Duration) Option {
	return func(w *Watcher) { w.messageTimeout = d }
}

// WithBackoff overrides the reconnect curve.
func WithBackoff(b Backoff) Option {
	return func(w *Watcher) { w.backoff = b }
}

// WithSubscribe sends payload as a text message right after every open.
func WithSubscribe(payload []byte) Option {
	return func(w *Watcher) { w.subscribe = payload }
}

// WithPingInterval sends ping frames while the connection is open.
func WithPingInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pingInterval = d }
}

// WithStatus holds a connecting lock on agg from the start of every attempt
// until its first well-formed message.
func WithStatus(agg *status.Aggregator) Option {
	return func(w *Watcher) { w.status = agg }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// New creates a stopped watcher. Call Start to begin connecting.
func New(name, endpoint string, dialer Dialer, handler Handler, opts ...Option) *Watcher {
	w := &Watcher{
		name:           name,
		endpoint:       endpoint,
		dialer:         dialer,
		handler:        handler,
		connectTimeout: DefaultConnectTimeout,
		messageTimeout: DefaultBlockMessageTimeout,
		backoff:        DefaultBackoff(),
		logger:         logger.Nop(),
		events:         make(chan event),
		stopCh:         make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = &logger.Logger{Logger: w.logger.WithComponent("watcher").With().Str("watcher", name).Logger()}

	return w
}

// Start launches the connect loop. Cancelling ctx has the same effect as
// Stop. Calling Start more than once, or after Stop, does nothing.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.isStopped() {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.stopOnce.Do(func() { close(w.stopCh) })
		case <-w.done:
		}
	}()
	go w.loop(ctx)
}

// Stop permanently closes the watcher and waits for its loop to exit.
// Subsequent calls return immediately.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.logger.Info().Str("func", "Watcher.Stop").Msg("stopping")
		close(w.stopCh)
	})

	w.mu.Lock()
	started := w.started
	w.mu.Unlock()
	if started {
		<-w.done
	}
}

// State returns the current connection state.
func (w *Watcher) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Failures returns the consecutive failure counter.
func (w *Watcher) Failures() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failures
}

func (w *Watcher) isStopped() bool {
	select {
	case <-w.stopCh:
		return true
	default:
		return false
	}
}

func (w *Watcher) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer w.setState(Disconnected)

	for {
		switch w.attempt(ctx) {
		case outcomeStopped:
			return
		case outcomeHealthyClose:
			w.mu.Lock()
			w.failures = 0
			w.mu.Unlock()
			w.logger.Warn().Str("func", "Watcher.loop").Msg("connection lost: reconnecting immediately")
			continue
		case outcomeFailure:
			w.mu.Lock()
			w.failures = w.backoff.Cap(w.failures + 1)
			failures := w.failures
			w.mu.Unlock()

			delay := w.backoff.Delay(failures)
			w.logger.Warn().
				Str("func", "Watcher.loop").
				Int("failures", failures).
				Dur("delay", delay).
				Msg("connection attempt failed: reconnecting after delay")

			w.setState(Disconnected)
			timer := time.NewTimer(delay)
			select {
			case <-w.stopCh:
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

// attempt runs one connection from dial to close.
func (w *Watcher) attempt(parent context.Context) outcome {
	if w.isStopped() {
		return outcomeStopped
	}

	w.mu.Lock()
	w.generation++
	gen := w.generation
	w.state = Connecting
	w.mu.Unlock()

	log := w.logger.With().Uint64("generation", gen).Logger()
	log.Info().Str("func", "Watcher.attempt").Msg("connecting")

	releaseConnecting := func() {}
	if w.status != nil {
		releaseConnecting = w.status.BeginConnecting()
	}
	defer releaseConnecting()

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	go w.run(ctx, gen)

	var conn Conn
	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	timer := time.NewTimer(w.connectTimeout)
	defer timer.Stop()

	var pingC <-chan time.Time
	wasConnected := false

	for {
		select {
		case <-w.stopCh:
			return outcomeStopped

		case <-timer.C:
			if conn == nil {
				log.Warn().Err(ErrConnectTimeout).Str("func", "Watcher.attempt").Send()
			} else {
				log.Warn().Err(ErrMessageTimeout).Str("func", "Watcher.attempt").Msg("restarting")
			}
			return outcomeFailure

		case <-pingC:
			if err := conn.WriteMessage(PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("func", "Watcher.attempt").Msg("ping failed")
			}

		case ev := <-w.events:
			if ev.gen != gen {
				if ev.conn != nil {
					_ = ev.conn.Close()
				}
				continue
			}

			switch ev.kind {
			case eventOpen:
				conn = ev.conn
				w.setState(Connected)
				log.Info().Str("func", "Watcher.attempt").Msg("connected")

				if len(w.subscribe) > 0 {
					if err := conn.WriteMessage(TextMessage, w.subscribe); err != nil {
						log.Warn().Err(err).Str("func", "Watcher.attempt").Msg("error sending subscribe request")
						return outcomeFailure
					}
				}
				if w.pingInterval > 0 {
					ticker := time.NewTicker(w.pingInterval)
					defer ticker.Stop()
					pingC = ticker.C
				}
				timer.Reset(w.messageTimeout)

			case eventMessage:
				if err := w.handler(ctx, ev.data); err != nil {
					log.Warn().Err(err).Str("func", "Watcher.attempt").Msg("dropping message")
					continue
				}

				if !wasConnected {
					wasConnected = true
					releaseConnecting()
				}
				w.mu.Lock()
				w.failures = 0
				w.mu.Unlock()
				timer.Reset(w.messageTimeout)

			case eventClosed:
				if conn == nil {
					log.Warn().Err(ev.err).Str("func", "Watcher.attempt").Msg("connection failed")
					return outcomeFailure
				}
				if wasConnected {
					return outcomeHealthyClose
				}
				log.Warn().Err(ev.err).Str("func", "Watcher.attempt").Msg("connection closed before first message")
				return outcomeFailure
			}
		}
	}
}

// run dials and then pumps messages into the shared event channel until the
// connection fails or ctx is cancelled.
func (w *Watcher) run(ctx context.Context, gen uint64) {
	conn, err := w.dialer.Dial(ctx, w.endpoint)
	if err != nil {
		w.emit(ctx, event{gen: gen, kind: eventClosed, err: err})
		return
	}

	if !w.emit(ctx, event{gen: gen, kind: eventOpen, conn: conn}) {
		_ = conn.Close()
		return
	}

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			w.emit(ctx, event{gen: gen, kind: eventClosed, err: err})
			return
		}
		if messageType != TextMessage {
			continue
		}
		if !w.emit(ctx, event{gen: gen, kind: eventMessage, data: data}) {
			return
		}
	}
}

func (w *Watcher) emit(ctx context.Context, ev event) bool {
	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
