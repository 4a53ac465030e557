// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/charmbracelet/bubbles/spinner"
)

// indicatorModel renders the collapsed sync state. The spinner shows while
// anything is connecting or updating.
type indicatorModel struct {
	spinner  spinner.Model
	snapshot status.Snapshot
}

func newIndicatorModel() indicatorModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return indicatorModel{spinner: s}
}

func (m indicatorModel) View() string {
	state := m.snapshot.State()

	var label string
	switch state {
	case status.StateConnecting:
		label = m.spinner.View() + " " + connectingStyle.Render(stateLabel(state))
	case status.StateUpdating:
		label = m.spinner.View() + " " + updatingStyle.Render(stateLabel(state))
	default:
		label = "● " + onlineStyle.Render(stateLabel(state))
	}

	return fmt.Sprintf("%s   %s", label, helpStyle.Render(fmt.Sprintf(
		"connecting: %d  updating: %d", m.snapshot.Connecting, m.snapshot.Updating)))
}
