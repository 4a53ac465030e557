// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/migrations"
)

// SQL dialects understood by DB.Migrate.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DB is a database handle with its dialect and error classifier.
type DB struct {
	*sql.DB
	dialect            string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate applies the embedded migration set of the handle's dialect.
func (db *DB) Migrate() error {
	switch db.dialect {
	case DialectPostgres:
		return migrations.MigratePostgres(db.DB)
	case DialectSQLite:
		return migrations.MigrateSQLite(db.DB)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDialect, db.dialect)
	}
}
