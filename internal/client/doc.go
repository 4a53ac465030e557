// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync daemon runtime.
//
// It wires the block feed, the cursor tracker, per-account refresh tasks and
// the cloud-synced settings into a single process lifecycle, and optionally
// renders them in the terminal status monitor.
package client
