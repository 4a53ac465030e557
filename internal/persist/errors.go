// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package persist

import "errors"

var (
	ErrLoad   = errors.New("failed to load persisted value")
	ErrStore  = errors.New("failed to store persisted value")
	ErrEncode = errors.New("failed to encode persisted value")
	ErrWipe   = errors.New("failed to wipe local storage")
)
