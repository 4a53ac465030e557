// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// sync client and the record server. It is populated by merging values from
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity and key material settings.
	App App `envPrefix:"APP_"`

	// Storage holds the database settings. The client uses a SQLite file,
	// the server a PostgreSQL DSN or nothing for the in-memory backend.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listener addresses and request limits of the record server.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote endpoints the client talks to.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds watcher and retry timings.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the persistence settings.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds application-level settings.
type App struct {
	// Network selects the key derivation namespace: "mainnet" or "sandbox".
	// Env: APP_NETWORK
	Network string `env:"NETWORK"`

	// MasterKey is the hex-encoded master secret all per-key content keys are
	// derived from. Takes precedence over Passphrase.
	// Env: APP_MASTER_KEY
	MasterKey string `env:"MASTER_KEY"`

	// Passphrase is stretched with argon2id into the master secret when
	// MasterKey is empty.
	// Env: APP_PASSPHRASE
	Passphrase string `env:"PASSPHRASE"`

	// PassphraseSalt is the argon2id salt used with Passphrase.
	// Env: APP_PASSPHRASE_SALT
	PassphraseSalt string `env:"PASSPHRASE_SALT"`

	// Addresses is the list of watched account addresses.
	// Env: APP_ADDRESSES (comma separated)
	Addresses []string `env:"ADDRESSES" envSeparator:","`

	// StorageVersion is the local storage schema version. A mismatch with the
	// stored one wipes the local KV.
	// Env: APP_STORAGE_VERSION
	StorageVersion int `env:"STORAGE_VERSION"`

	// LogFile is the client log destination. Empty means next to the binary.
	// Env: APP_LOG_FILE
	LogFile string `env:"LOG_FILE"`

	// Monitor enables the terminal status monitor on the client.
	// Env: APP_MONITOR
	Monitor bool `env:"MONITOR"`

	// MetricsAddress is the host:port the client serves its sync status
	// gauges on. Empty disables the listener.
	// Env: APP_METRICS_ADDRESS
	MetricsAddress string `env:"METRICS_ADDRESS"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Server holds network and timeout settings for the record server.
type Server struct {
	// HTTPAddress is the TCP address of the HTTP API and /metrics.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the gRPC health endpoint.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the maximum duration of a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// SignatureWindow is how far in the future a signed request time may be.
	// Requests with a time in the past are rejected.
	// Env: SERVER_SIGNATURE_WINDOW
	SignatureWindow time.Duration `env:"SIGNATURE_WINDOW"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is a PostgreSQL connection string on the server or a SQLite file
	// path on the client.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the remote endpoints used by the client.
type Adapter struct {
	// StorageURL is the base URL of the encrypted record store.
	// Env: ADAPTER_STORAGE_URL
	StorageURL string `env:"STORAGE_URL"`

	// ChainURL is the base URL of the chain HTTP API.
	// Env: ADAPTER_CHAIN_URL
	ChainURL string `env:"CHAIN_URL"`

	// BlocksEndpoint is the websocket URL of the block change feed.
	// Env: ADAPTER_BLOCKS_ENDPOINT
	BlocksEndpoint string `env:"BLOCKS_ENDPOINT"`

	// AccountEndpoint is the websocket URL of the JSON-RPC account feed.
	// Empty disables per-account watching.
	// Env: ADAPTER_ACCOUNT_ENDPOINT
	AccountEndpoint string `env:"ACCOUNT_ENDPOINT"`

	// RequestTimeout bounds every outbound HTTP request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds timings of the stream watchers and sync tasks.
type Workers struct {
	// Env: WORKERS_CONNECT_TIMEOUT
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT"`
	// Env: WORKERS_BLOCK_MESSAGE_TIMEOUT
	BlockMessageTimeout time.Duration `env:"BLOCK_MESSAGE_TIMEOUT"`
	// Env: WORKERS_ACCOUNT_MESSAGE_TIMEOUT
	AccountMessageTimeout time.Duration `env:"ACCOUNT_MESSAGE_TIMEOUT"`
	// Env: WORKERS_BACKOFF_FLOOR
	BackoffFloor time.Duration `env:"BACKOFF_FLOOR"`
	// Env: WORKERS_BACKOFF_CEILING
	BackoffCeiling time.Duration `env:"BACKOFF_CEILING"`
	// Env: WORKERS_MAX_FAILURES
	MaxFailures int `env:"MAX_FAILURES"`
	// Env: WORKERS_RETRY_BASE
	RetryBase time.Duration `env:"RETRY_BASE"`
	// Env: WORKERS_RETRY_CAP
	RetryCap time.Duration `env:"RETRY_CAP"`
}

// defaults are merged last, so they only fill fields no source has set.
func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Network:        NetworkMainnet,
			StorageVersion: 1,
		},
		Server: Server{
			HTTPAddress:     "localhost:8080",
			GRPCAddress:     "localhost:9090",
			RequestTimeout:  30 * time.Second,
			SignatureWindow: 2 * time.Minute,
		},
		Adapter: Adapter{
			RequestTimeout: 10 * time.Second,
		},
		Workers: Workers{
			ConnectTimeout:        5 * time.Second,
			BlockMessageTimeout:   15 * time.Second,
			AccountMessageTimeout: 60 * time.Second,
			BackoffFloor:          time.Second,
			BackoffCeiling:        5 * time.Second,
			MaxFailures:           50,
			RetryBase:             time.Second,
			RetryCap:              30 * time.Second,
		},
	}
}

// Key derivation networks.
const (
	NetworkMainnet = "mainnet"
	NetworkSandbox = "sandbox"
)

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (earlier sources win for non-zero fields):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		withDefaults().
		build()
}
