// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

const unknownBuildValue = "N/A"

// BuildInfo is the linker-injected metadata of a ledger-sync binary.
type BuildInfo struct {
	Name    string
	Version string
	Date    string
	Commit  string
}

// BuildField is one labelled line of [BuildInfo.Fields].
type BuildField struct {
	Label string
	Value string
}

// Fields returns the build metadata in display order. Blank values read as
// "N/A".
func (b BuildInfo) Fields() []BuildField {
	return []BuildField{
		{Label: "Application", Value: orUnknown(b.Name)},
		{Label: "Version", Value: orUnknown(b.Version)},
		{Label: "Date", Value: orUnknown(b.Date)},
		{Label: "Commit", Value: orUnknown(b.Commit)},
	}
}

func (b BuildInfo) String() string {
	var sb strings.Builder
	for i, f := range b.Fields() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.Label)
		sb.WriteString(": ")
		sb.WriteString(f.Value)
	}
	return sb.String()
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return unknownBuildValue
	}
	return v
}
