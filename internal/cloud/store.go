// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cloud replicates small encrypted documents across devices through
// the remote record store.
//
// [Store] is the optimistic-concurrency layer: every record is addressed by a
// key pair derived from the master secret, every request is signed, and writes
// are compare-and-swap on the record's sequence number. [Value] layers a
// mergeable [crdt.Document] on top so concurrent edits from different devices
// are merged rather than overwritten.
package cloud

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/adapter"
	"github.com/MKhiriev/go-ledger-sync/internal/crypto"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/utils"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// DefaultRequestTTL is how far in the future signed requests expire.
const DefaultRequestTTL = 60 * time.Second

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithRequestTTL sets the validity window of signed requests.
func WithRequestTTL(d time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = d
	}
}

// WithStoreLogger sets the store logger.
func WithStoreLogger(log *logger.Logger) StoreOption {
	return func(s *Store) {
		s.logger = log
	}
}

// Store reads and writes encrypted records.
type Store struct {
	adapter adapter.StorageAdapter
	keys    crypto.Keychain
	logger  *logger.Logger
	now     func() time.Time
	ttl     time.Duration

	traceIDs *utils.UUIDGenerator
}

// NewStore constructs a Store.
func NewStore(a adapter.StorageAdapter, kc crypto.Keychain, opts ...StoreOption) *Store {
	s := &Store{
		adapter: a,
		keys:    kc,
		logger:  logger.Nop(),
		now:     time.Now,
		ttl:     DefaultRequestTTL,

		traceIDs: utils.NewUUIDGenerator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the current sequence and plaintext of key. A record that was
// never written reads as seq 0 with a nil value. Network errors are returned
// as is; a malformed response or a box that fails to open is a hard error.
func (s *Store) Read(ctx context.Context, key string) (models.Record, error) {
	keys, err := s.contentKeys(key)
	if err != nil {
		return models.Record{}, err
	}
	ctx, _ = s.traceIDs.EnsureTraceID(ctx)

	return s.read(ctx, keys)
}

// Update runs a compare-and-swap loop on key: read the current plaintext,
// compute fn(current), and write it conditioned on the read sequence. When
// another writer won, fn runs again on the state that won. fn may therefore
// run several times and must not have side effects. The committed plaintext
// is returned. Every request of one call carries the same trace id.
func (s *Store) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) ([]byte, error) {
	keys, err := s.contentKeys(key)
	if err != nil {
		return nil, err
	}
	ctx, traceID := s.traceIDs.EnsureTraceID(ctx)

	current, err := s.read(ctx, keys)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		next, err := fn(current.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUpdateFn, err)
		}

		updated, state, err := s.write(ctx, keys, current.Seq, next)
		if err != nil {
			return nil, err
		}
		if updated {
			s.logger.Debug().
				Str("func", "*Store.Update").
				Str("key", key).
				Str("trace_id", traceID).
				Int64("seq", state.Seq).
				Int("attempts", attempt).
				Msg("record committed")
			return next, nil
		}

		s.logger.Debug().
			Str("func", "*Store.Update").
			Str("key", key).
			Str("trace_id", traceID).
			Int64("stale_seq", current.Seq).
			Int64("seq", state.Seq).
			Msg("write rejected, retrying on current state")
		current = state
	}
}

func (s *Store) contentKeys(key string) (*crypto.ContentKeys, error) {
	keys, err := s.keys.ContentKeys(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyDerivation, err)
	}
	return keys, nil
}

func (s *Store) expiry() uint32 {
	return uint32(s.now().Add(s.ttl).Unix())
}

func (s *Store) read(ctx context.Context, keys *crypto.ContentKeys) (models.Record, error) {
	expiry := s.expiry()

	resp, err := s.adapter.ReadRecord(ctx, models.ReadRequest{
		Key:       base64.StdEncoding.EncodeToString(keys.Public),
		Signature: base64.StdEncoding.EncodeToString(keys.SignRead(expiry)),
		Time:      int64(expiry),
	})
	if err != nil {
		return models.Record{}, wrapAdapterError(err)
	}

	return s.open(keys, resp.Value)
}

func (s *Store) write(ctx context.Context, keys *crypto.ContentKeys, seq int64, plaintext []byte) (bool, models.Record, error) {
	box, err := keys.Seal(plaintext)
	if err != nil {
		return false, models.Record{}, fmt.Errorf("%w: %w", ErrSeal, err)
	}
	expiry := s.expiry()

	resp, err := s.adapter.WriteRecord(ctx, models.WriteRequest{
		Key:       base64.StdEncoding.EncodeToString(keys.Public),
		Signature: base64.StdEncoding.EncodeToString(keys.SignWrite(box, uint32(seq), expiry)),
		Time:      int64(expiry),
		Seq:       seq,
		Value:     base64.StdEncoding.EncodeToString(box),
	})
	if err != nil {
		return false, models.Record{}, wrapAdapterError(err)
	}

	if resp.Updated {
		if resp.Current.Seq != seq+1 {
			return false, models.Record{}, fmt.Errorf("%w: committed seq %d after %d", ErrMalformedResponse, resp.Current.Seq, seq)
		}
		return true, models.Record{Seq: resp.Current.Seq, Value: plaintext}, nil
	}

	current, err := s.open(keys, resp.Current)
	if err != nil {
		return false, models.Record{}, err
	}
	if current.Seq == seq {
		return false, models.Record{}, fmt.Errorf("%w: write rejected at matching seq %d", ErrMalformedResponse, seq)
	}
	return false, current, nil
}

func (s *Store) open(keys *crypto.ContentKeys, v models.RecordValue) (models.Record, error) {
	if v.Value == nil {
		return models.Record{Seq: v.Seq}, nil
	}

	box, err := base64.StdEncoding.DecodeString(*v.Value)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	plaintext, err := keys.Open(box)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	return models.Record{Seq: v.Seq, Value: plaintext}, nil
}

func wrapAdapterError(err error) error {
	if errors.Is(err, adapter.ErrMalformedResponse) {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return err
}
