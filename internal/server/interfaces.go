// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "context"

// Server defines the common lifecycle contract for transport servers managed
// by this package.
type Server interface {
	// RunServer serves until SIGTERM, SIGINT or SIGQUIT, then shuts down.
	RunServer()

	// Run serves until ctx is done or a transport fails, then shuts every
	// transport down.
	Run(ctx context.Context) error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}

// transport is one listener of the server.
type transport interface {
	name() string
	listen() error
	serve() error
	shutdown()
}
