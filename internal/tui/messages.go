// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

// changedMsg reports that the source has new values.
type changedMsg struct{}

type refreshDoneMsg struct {
	err error
}
