// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// metricsServer exposes the client's status gauges on GET /metrics. The
// listener is bound on construction so a bad address fails NewApp.
type metricsServer struct {
	server   *http.Server
	listener net.Listener
	logger   *logger.Logger

	once sync.Once
}

func newMetricsServer(addr string, gatherer prometheus.Gatherer, log *logger.Logger) (*metricsServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener %s: %w", addr, err)
	}

	router := chi.NewRouter()
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &metricsServer{
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		},
		listener: ln,
		logger:   log.WithComponent("metrics"),
	}, nil
}

// Addr returns the bound address.
func (m *metricsServer) Addr() string {
	return m.listener.Addr().String()
}

func (m *metricsServer) Start(context.Context) {
	go func() {
		m.logger.Info().Str("address", m.Addr()).Msg("serving status metrics")
		if err := m.server.Serve(m.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error().Err(err).Str("func", "*metricsServer.Start").Msg("metrics server stopped")
		}
	}()
}

// Stop shuts the server down. A server that was never started only closes its
// listener.
func (m *metricsServer) Stop() {
	m.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := m.server.Shutdown(ctx); err != nil {
			m.logger.Warn().Err(err).Str("func", "*metricsServer.Stop").Msg("metrics server shutdown")
		}
		_ = m.listener.Close()
	})
}
