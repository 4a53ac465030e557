// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// DefaultClientDSN is the SQLite file used when no DSN is configured.
const DefaultClientDSN = "ledger-sync.db"

// ClientApp holds client-side application settings derived from the shared
// structured config.
type ClientApp struct {
	Network        string
	MasterKey      string
	Passphrase     string
	PassphraseSalt string
	Addresses      []string
	StorageVersion int
	LogFile        string
	Monitor        bool
	MetricsAddress string
	Version        string
}

// ClientAdapter holds the remote endpoints used by the client.
type ClientAdapter struct {
	StorageURL      string
	ChainURL        string
	BlocksEndpoint  string
	AccountEndpoint string
	RequestTimeout  time.Duration
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds the local SQLite settings.
	DB DB
}

// ClientWorkers contains watcher and retry timings.
type ClientWorkers struct {
	ConnectTimeout        time.Duration
	BlockMessageTimeout   time.Duration
	AccountMessageTimeout time.Duration
	BackoffFloor          time.Duration
	BackoffCeiling        time.Duration
	MaxFailures           int
	RetryBase             time.Duration
	RetryCap              time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := NewClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

// NewClientConfig maps the fields relevant to the client runtime.
func NewClientConfig(cfg *StructuredConfig) *ClientConfig {
	dsn := cfg.Storage.DB.DSN
	if dsn == "" {
		dsn = DefaultClientDSN
	}

	return &ClientConfig{
		App: ClientApp{
			Network:        cfg.App.Network,
			MasterKey:      cfg.App.MasterKey,
			Passphrase:     cfg.App.Passphrase,
			PassphraseSalt: cfg.App.PassphraseSalt,
			Addresses:      cfg.App.Addresses,
			StorageVersion: cfg.App.StorageVersion,
			LogFile:        cfg.App.LogFile,
			Monitor:        cfg.App.Monitor,
			MetricsAddress: cfg.App.MetricsAddress,
			Version:        cfg.App.Version,
		},
		Adapter: ClientAdapter{
			StorageURL:      cfg.Adapter.StorageURL,
			ChainURL:        cfg.Adapter.ChainURL,
			BlocksEndpoint:  cfg.Adapter.BlocksEndpoint,
			AccountEndpoint: cfg.Adapter.AccountEndpoint,
			RequestTimeout:  cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: DB{DSN: dsn},
		},
		Workers: ClientWorkers{
			ConnectTimeout:        cfg.Workers.ConnectTimeout,
			BlockMessageTimeout:   cfg.Workers.BlockMessageTimeout,
			AccountMessageTimeout: cfg.Workers.AccountMessageTimeout,
			BackoffFloor:          cfg.Workers.BackoffFloor,
			BackoffCeiling:        cfg.Workers.BackoffCeiling,
			MaxFailures:           cfg.Workers.MaxFailures,
			RetryBase:             cfg.Workers.RetryBase,
			RetryCap:              cfg.Workers.RetryCap,
		},
	}
}
