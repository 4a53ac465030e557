// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-ledger-sync/internal/status"
	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

// monitorModel is the single monitor page with a build info overlay.
type monitorModel struct {
	ctx       context.Context
	source    Source
	changes   <-chan struct{}
	buildInfo models.BuildInfo

	indicator indicatorModel
	wallets   table.Model
	settings  models.Settings
	launches  int64

	refreshing    bool
	statusLine    string
	errMsg        string
	showBuildInfo bool
}

func newMonitorModel(ctx context.Context, source Source, changes <-chan struct{}, buildInfo models.BuildInfo) monitorModel {
	m := monitorModel{
		ctx:       ctx,
		source:    source,
		changes:   changes,
		buildInfo: buildInfo,
		indicator: newIndicatorModel(),
		wallets:   newWalletTable(),
	}
	return m.reload()
}

func (m monitorModel) Init() tea.Cmd {
	return tea.Batch(m.indicator.spinner.Tick, waitForChange(m.ctx, m.changes))
}

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKeys(msg)

	case changedMsg:
		return m.reload(), waitForChange(m.ctx, m.changes)

	case refreshDoneMsg:
		m.refreshing = false
		if msg.err != nil {
			m.errMsg = humanizeServerUnavailableError(msg.err)
			m.statusLine = ""
		} else {
			m.errMsg = ""
			m.statusLine = "Refreshed"
		}
		return m.reload(), nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.indicator.spinner, cmd = m.indicator.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m monitorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.quit):
		return m, tea.Quit
	case key.Matches(msg, keys.info):
		m.showBuildInfo = !m.showBuildInfo
		return m, nil
	case key.Matches(msg, keys.esc):
		m.showBuildInfo = false
		return m, nil
	}

	if m.showBuildInfo {
		return m, nil
	}

	if key.Matches(msg, keys.refresh) {
		if m.refreshing {
			return m, nil
		}
		m.refreshing = true
		m.statusLine = ""
		m.errMsg = ""
		return m, cmdRefresh(m.ctx, m.source)
	}

	var cmd tea.Cmd
	m.wallets, cmd = m.wallets.Update(msg)
	return m, cmd
}

// reload copies the current source values into the model.
func (m monitorModel) reload() monitorModel {
	m.indicator.snapshot = m.source.Status()
	m.wallets.SetRows(walletRows(m.source.Wallets()))
	m.settings = m.source.Settings()
	m.launches = m.source.Launches()
	return m
}

func (m monitorModel) View() string {
	if m.showBuildInfo {
		return appStyle.Render(renderBuildInfoWindow(m.buildInfo))
	}

	var b strings.Builder
	b.WriteString(m.indicator.View())
	b.WriteString("\n\n")
	b.WriteString(m.wallets.View())
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Currency: %s   Theme: %s   Launches: %d",
		valueOrDash(m.settings.Currency), valueOrDash(m.settings.Theme), m.launches)

	switch {
	case m.refreshing:
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("Refreshing..."))
	case m.errMsg != "":
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render(m.errMsg))
	case m.statusLine != "":
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render(m.statusLine))
	}

	return appStyle.Render(renderPage(titleStyle.Render("LEDGER SYNC"), b.String(),
		helpStyle.Render("↑/↓: select  s: refresh  v: about")))
}

func waitForChange(ctx context.Context, changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-changes:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func cmdRefresh(ctx context.Context, source Source) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: source.Refresh(ctx)}
	}
}

// stateLabel is the indicator text of a collapsed state.
func stateLabel(s status.State) string {
	switch s {
	case status.StateConnecting:
		return "Connecting"
	case status.StateUpdating:
		return "Updating"
	default:
		return "Online"
	}
}
