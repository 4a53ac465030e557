// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import "github.com/charmbracelet/lipgloss"

var (
	appStyle   = lipgloss.NewStyle().Padding(1, 2)
	titleStyle = lipgloss.NewStyle().Bold(true)
	helpStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	labelStyle = lipgloss.NewStyle().Bold(true)

	onlineStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	connectingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	updatingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)
