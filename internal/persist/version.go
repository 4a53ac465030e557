// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package persist

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
)

// VersionKey holds the local storage schema version.
const VersionKey = "storage_version"

// MigrateVersion wipes every key of kv when the stored schema version differs
// from version, then records version. It reports whether a wipe happened.
// Must run before any item is loaded.
func MigrateVersion(ctx context.Context, kv KV, version int, log *logger.Logger) (bool, error) {
	data, ok, err := kv.Get(ctx, VersionKey)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	if ok {
		stored, err := strconv.Atoi(string(data))
		if err == nil && stored == version {
			return false, nil
		}
	}

	keys, err := kv.Keys(ctx, "")
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrWipe, err)
	}
	for _, key := range keys {
		if err := kv.Delete(ctx, key); err != nil {
			return false, fmt.Errorf("%w: %s: %w", ErrWipe, key, err)
		}
	}

	if err := kv.Set(ctx, VersionKey, []byte(strconv.Itoa(version))); err != nil {
		return false, fmt.Errorf("%w: %w", ErrStore, err)
	}

	log.Info().
		Str("func", "MigrateVersion").
		Int("version", version).
		Int("wiped", len(keys)).
		Msg("local storage reset")

	return true, nil
}
