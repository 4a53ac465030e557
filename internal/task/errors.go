// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package task

import (
	"errors"
	"fmt"
)

// ErrStopped is returned to waiters of a task that was stopped.
var ErrStopped = errors.New("task stopped")

// PanicError wraps a value recovered from a panicking handler.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task handler panicked: %v", e.Value)
}
