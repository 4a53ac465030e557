// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const (
	// insertRecord creates a record at seq 1. It affects no row when a
	// concurrent writer created the key first.
	insertRecord = `INSERT INTO records (key, seq, value, updated_at)
       VALUES ($1, 1, $2, NOW())
       ON CONFLICT (key) DO NOTHING`

	// updateRecord advances a record locked by buildLockRecordQuery.
	updateRecord = `UPDATE records
       SET seq = seq + 1, value = $2, updated_at = NOW()
       WHERE key = $1`

	upsertKV = `INSERT INTO kv (key, value) VALUES (?, ?)
       ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

	deleteKV = `DELETE FROM kv WHERE key = ?;`
)

// buildReadRecordQuery selects one record by key.
func buildReadRecordQuery(key string) (string, []any, error) {
	return sq.Select("seq", "value").
		From("records").
		Where(sq.Eq{"key": key}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// buildLockRecordQuery selects one record by key and locks its row until the
// transaction ends. A writer blocked on the lock reads the committed row.
func buildLockRecordQuery(key string) (string, []any, error) {
	return sq.Select("seq", "value").
		From("records").
		Where(sq.Eq{"key": key}).
		Suffix("FOR UPDATE").
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

// buildGetKVQuery selects one local value by key.
func buildGetKVQuery(key string) (string, []any, error) {
	return sq.Select("value").
		From("kv").
		Where(sq.Eq{"key": key}).
		PlaceholderFormat(sq.Question).
		ToSql()
}

// buildListKVKeysQuery lists local keys starting with prefix in key order.
func buildListKVKeysQuery(prefix string) (string, []any, error) {
	b := sq.Select("key").
		From("kv").
		OrderBy("key").
		PlaceholderFormat(sq.Question)

	if prefix != "" {
		b = b.Where("key LIKE ? ESCAPE '\\'", escapeLike(prefix)+"%")
	}

	return b.ToSql()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
