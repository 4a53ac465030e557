// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders the terminal status monitor of the sync client.
//
// The monitor shows the collapsed sync indicator, the derived wallet views
// and the cloud-synced settings, and redraws whenever the [Source] reports a
// change.
package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/MKhiriev/go-ledger-sync/models"
	tea "github.com/charmbracelet/bubbletea"
)

// Source is everything the monitor renders.
type Source interface {
	Status() status.Snapshot
	Wallets() []models.WalletView
	Settings() models.Settings
	Launches() int64
	// Refresh re-fetches everything and waits for it.
	Refresh(ctx context.Context) error
	// Subscribe registers fn for any change of the values above.
	Subscribe(fn func()) func()
}

// Monitor runs the status monitor program.
type Monitor struct {
	source    Source
	buildInfo models.BuildInfo
	logger    *logger.Logger
	options   []tea.ProgramOption
}

// NewMonitor constructs a Monitor on the alternate screen.
func NewMonitor(source Source, buildInfo models.BuildInfo, log *logger.Logger) *Monitor {
	return &Monitor{
		source:    source,
		buildInfo: buildInfo,
		logger:    log.WithComponent("monitor"),
		options:   []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Run blocks until the user quits or ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	changes := make(chan struct{}, 1)
	unsubscribe := m.source.Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	model := newMonitorModel(ctx, m.source, changes, m.buildInfo)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, m.options...)

	_, err := tea.NewProgram(model, opts...).Run()
	if err != nil && errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		m.logger.Info().Str("func", "*Monitor.Run").Msg("monitor closed by context")
		return nil
	}
	return err
}
