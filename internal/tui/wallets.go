// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strconv"

	"github.com/MKhiriev/go-ledger-sync/models"
	"github.com/charmbracelet/bubbles/table"
)

const addressWidth = 24

func newWalletTable() table.Model {
	return table.New(
		table.WithColumns([]table.Column{
			{Title: "Address", Width: addressWidth},
			{Title: "Balance", Width: 16},
			{Title: "Active", Width: 6},
			{Title: "Block", Width: 10},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
}

func walletRows(views []models.WalletView) []table.Row {
	rows := make([]table.Row, 0, len(views))
	for _, v := range views {
		active := "no"
		if v.Active {
			active = "yes"
		}
		rows = append(rows, table.Row{
			fitText(v.Address, addressWidth),
			valueOrDash(v.Balance),
			active,
			strconv.FormatInt(v.SyncedAt, 10),
		})
	}
	return rows
}
