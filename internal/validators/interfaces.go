// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the shape of every payload that crosses a trust
// boundary: pushed feed messages, storage server responses and storage
// requests arriving at the server.
//
// Rules live in `validate` struct tags on the models and are enforced by
// go-playground/validator. Passing field names to Validate restricts the
// check to those fields.
package validators

import "context"

// Validator validates the provided input and optionally restricts validation
// to specific named fields.
type Validator interface {
	Validate(ctx context.Context, obj any, fields ...string) error
}
