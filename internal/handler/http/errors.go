// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"

	"github.com/MKhiriev/go-ledger-sync/internal/app"
)

// ErrInvalidJSON is reported when a request body is not the expected JSON.
var ErrInvalidJSON = errors.New(app.MsgInvalidDataProvided)
