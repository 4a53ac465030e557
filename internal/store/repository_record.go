// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/sethvargo/go-retry"
)

const (
	casRetryDelay   = 20 * time.Millisecond
	casRetryAttempt = 3
)

// recordRepository is the PostgreSQL-backed [RecordRepository]. The
// compare-and-swap runs in a transaction holding the record's row lock, so the
// sequence check and the write are atomic per key.
type recordRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewRecordRepository constructs a PostgreSQL [RecordRepository].
func NewRecordRepository(db *DB, log *logger.Logger) RecordRepository {
	log.Debug().Msg("creating record repository")
	return &recordRepository{
		db:     db,
		logger: log,
	}
}

// Read implements [RecordRepository].
func (r *recordRepository) Read(ctx context.Context, key string) (models.StoredRecord, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildReadRecordQuery(key)
	if err != nil {
		return models.StoredRecord{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record := models.StoredRecord{Key: key}
	err = r.withRetry(ctx, func(ctx context.Context) error {
		return r.db.QueryRowContext(ctx, query, args...).Scan(&record.Seq, &record.Value)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredRecord{Key: key}, nil
	}
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.Read").Msg("error reading record")
		return models.StoredRecord{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return record, nil
}

// CompareAndSwap implements [RecordRepository]. The returned record is the
// row as it stands once the lock is held: a writer that lost a race sees the
// winner's seq, never its own.
func (r *recordRepository) CompareAndSwap(ctx context.Context, key string, seq int64, value []byte) (bool, models.StoredRecord, error) {
	log := logger.FromContext(ctx)

	var (
		updated bool
		current models.StoredRecord
	)
	err := r.withRetry(ctx, func(ctx context.Context) error {
		var err error
		updated, current, err = r.compareAndSwapTx(ctx, key, seq, value)
		return err
	})
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.CompareAndSwap").Msg("error writing record")
		return false, models.StoredRecord{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	log.Debug().
		Str("func", "*recordRepository.CompareAndSwap").
		Bool("updated", updated).
		Int64("seq", current.Seq).
		Msg("compare and swap")

	return updated, current, nil
}

// compareAndSwapTx is one attempt of CompareAndSwap.
func (r *recordRepository) compareAndSwapTx(ctx context.Context, key string, seq int64, value []byte) (bool, models.StoredRecord, error) {
	log := logger.FromContext(ctx)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*recordRepository.compareAndSwapTx").Msg("error beginning transaction")
		return false, models.StoredRecord{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	current, found, err := lockRecord(ctx, tx, key)
	if err != nil {
		return false, models.StoredRecord{}, err
	}

	updated := false
	switch {
	case !found && seq == 0:
		res, err := tx.ExecContext(ctx, insertRecord, key, value)
		if err != nil {
			return false, models.StoredRecord{}, err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return false, models.StoredRecord{}, err
		}
		if rows == 1 {
			updated = true
			current = models.StoredRecord{Key: key, Seq: 1, Value: value}
			break
		}
		// the insert waited on a concurrent creator that committed first
		current, _, err = lockRecord(ctx, tx, key)
		if err != nil {
			return false, models.StoredRecord{}, err
		}
	case found && current.Seq == seq:
		if _, err = tx.ExecContext(ctx, updateRecord, key, value); err != nil {
			return false, models.StoredRecord{}, err
		}
		updated = true
		current = models.StoredRecord{Key: key, Seq: seq + 1, Value: value}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*recordRepository.compareAndSwapTx").Msg("error committing transaction")
		return false, models.StoredRecord{}, fmt.Errorf("%w: %w", ErrCommittingTransaction, err)
	}
	return updated, current, nil
}

// lockRecord reads key under a row lock. A missing key reads as seq 0.
func lockRecord(ctx context.Context, tx *sql.Tx, key string) (models.StoredRecord, bool, error) {
	query, args, err := buildLockRecordQuery(key)
	if err != nil {
		return models.StoredRecord{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record := models.StoredRecord{Key: key}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&record.Seq, &record.Value)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredRecord{Key: key}, false, nil
	}
	if err != nil {
		return models.StoredRecord{}, false, err
	}
	return record, true, nil
}

// withRetry reruns fn on errors the classifier marks retryable.
func (r *recordRepository) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(casRetryAttempt-1, retry.NewConstant(casRetryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if err != nil && r.db.errorClassificator != nil && r.db.errorClassificator.Classify(err) == Retryable {
			r.logger.Warn().Err(err).Str("func", "*recordRepository.withRetry").Msg("retrying transient database error")
			return retry.RetryableError(err)
		}
		return err
	})
}
