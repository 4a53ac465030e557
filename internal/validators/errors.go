// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	// ErrUnsupportedType is returned for values that are not structs or
	// pointers to structs.
	ErrUnsupportedType = errors.New("unsupported type for validation")

	// ErrInvalidJSON is returned when a payload cannot be decoded.
	ErrInvalidJSON = errors.New("invalid json payload")

	// ErrValidation is returned when a decoded value breaks a struct rule.
	// The wrapped error names the failing fields.
	ErrValidation = errors.New("validation failed")
)
