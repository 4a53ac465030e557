// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"strings"

	"github.com/MKhiriev/go-ledger-sync/models"
)

func renderBuildInfoWindow(info models.BuildInfo) string {
	var b strings.Builder
	for _, f := range info.Fields() {
		b.WriteString(labelStyle.Render(f.Label + ":"))
		b.WriteString(" ")
		b.WriteString(f.Value)
		b.WriteString("\n")
	}

	return renderPage(titleStyle.Render("ABOUT"), strings.TrimRight(b.String(), "\n"), helpStyle.Render("esc: back"))
}
