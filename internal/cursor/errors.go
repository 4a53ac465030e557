// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package cursor

import "errors"

// ErrMalformedMessage is returned by Tracker.Handle for messages that are not
// JSON or fail shape validation.
var ErrMalformedMessage = errors.New("malformed block message")
