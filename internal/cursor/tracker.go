// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cursor turns the raw block feed into an ordered, gap-checked
// sequence of deltas.
//
// The Tracker keeps a session: the contiguous run of block sequence numbers
// observed so far. A message that continues the session is emitted as a
// Delta; a duplicate or older message is ignored; a jump ahead discards the
// session and starts a new one at the received seqno. Missing blocks are
// never backfilled, because the feed is a best-effort push and not a
// queryable log.
package cursor

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/observer"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// Cursor points at one block.
type Cursor struct {
	Seqno int64
}

// Session is a contiguous run of observed blocks.
type Session struct {
	First   Cursor
	Current Cursor
}

// Delta is one sequential block.
type Delta struct {
	Seqno      int64
	Payload    map[string]models.AccountChange
	ObservedAt int64
}

// Tracker validates block messages and keeps the current Session.
type Tracker struct {
	validator validators.Validator
	logger    *logger.Logger

	mu      sync.Mutex
	session *Session

	sessions observer.List[Cursor]
	deltas   observer.List[Delta]
}

// NewTracker returns a Tracker with no session.
func NewTracker(v validators.Validator, log *logger.Logger) *Tracker {
	return &Tracker{
		validator: v,
		logger:    log.WithComponent("tracker"),
	}
}

// OnNewSession registers fn for every session start, including restarts after
// a gap.
func (t *Tracker) OnNewSession(fn func(Cursor)) func() {
	return t.sessions.Subscribe(fn)
}

// OnDelta registers fn for every sequential block.
func (t *Tracker) OnDelta(fn func(Delta)) func() {
	return t.deltas.Subscribe(fn)
}

// Session returns a copy of the current session.
func (t *Tracker) Session() (Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return Session{}, false
	}
	return *t.session, true
}

// Handle decodes and applies one raw feed message. It matches
// watcher.Handler: malformed input is returned as ErrMalformedMessage so the
// watcher drops it without counting the connection as healthy.
func (t *Tracker) Handle(ctx context.Context, raw []byte) error {
	var msg models.BlockChanged
	if err := validators.DecodeJSON(ctx, t.validator, raw, &msg); err != nil {
		t.logger.Warn().Err(err).Str("func", "Tracker.Handle").Msg("invalid block message")
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	t.Apply(*msg.Seqno, msg.Changed, *msg.LastUtime)
	return nil
}

// Apply advances the session with a validated block.
func (t *Tracker) Apply(seqno int64, changed map[string]models.AccountChange, observedAt int64) {
	t.mu.Lock()

	switch {
	case t.session == nil:
		t.session = &Session{First: Cursor{seqno}, Current: Cursor{seqno}}
		t.mu.Unlock()

		t.logger.Info().Int64("seqno", seqno).Msg("session started")
		t.sessions.Notify(Cursor{seqno})

	case seqno <= t.session.Current.Seqno:
		current := t.session.Current.Seqno
		t.mu.Unlock()

		if seqno != current {
			t.logger.Warn().
				Int64("seqno", seqno).
				Int64("current", current).
				Msg("ignoring old block")
		}

	case seqno > t.session.Current.Seqno+1:
		current := t.session.Current.Seqno
		t.session = &Session{First: Cursor{seqno}, Current: Cursor{seqno}}
		t.mu.Unlock()

		t.logger.Warn().
			Int64("seqno", seqno).
			Int64("current", current).
			Msg("session lost: restarting")
		t.sessions.Notify(Cursor{seqno})

	default:
		t.session.Current = Cursor{seqno}
		t.mu.Unlock()

		t.logger.Debug().Int64("seqno", seqno).Int("changed", len(changed)).Msg("valid block")
		t.deltas.Notify(Delta{Seqno: seqno, Payload: changed, ObservedAt: observedAt})
	}
}
