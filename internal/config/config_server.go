// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ServerTransport holds listener settings of the record server.
type ServerTransport struct {
	HTTPAddress     string
	GRPCAddress     string
	RequestTimeout  time.Duration
	SignatureWindow time.Duration
}

// ServerConfig is the record server view of [StructuredConfig].
type ServerConfig struct {
	Version string
	Server  ServerTransport
	// Storage.DB.DSN empty selects the in-memory record backend.
	Storage Storage
}

// GetServerConfig builds and validates the server config view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := NewServerConfig(cfg)
	return serverCfg, serverCfg.validate()
}

// NewServerConfig maps the fields relevant to the record server.
func NewServerConfig(cfg *StructuredConfig) *ServerConfig {
	return &ServerConfig{
		Version: cfg.App.Version,
		Server: ServerTransport{
			HTTPAddress:     cfg.Server.HTTPAddress,
			GRPCAddress:     cfg.Server.GRPCAddress,
			RequestTimeout:  cfg.Server.RequestTimeout,
			SignatureWindow: cfg.Server.SignatureWindow,
		},
		Storage: cfg.Storage,
	}
}
