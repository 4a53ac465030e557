// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crdt

import "errors"

var (
	ErrCorruptDocument = errors.New("corrupt document")
	ErrEmptyField      = errors.New("field name is empty")
	ErrEncodeValue     = errors.New("failed to encode field value")
	ErrNoActor         = errors.New("document has no actor")
	ErrProjection      = errors.New("failed to project document value")
)
