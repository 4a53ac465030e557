// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with JSON tags and
// string-friendly durations.
type StructuredJSONConfig struct {
	App struct {
		Network        string   `json:"network"`
		MasterKey      string   `json:"master_key"`
		Passphrase     string   `json:"passphrase"`
		PassphraseSalt string   `json:"passphrase_salt"`
		Addresses      []string `json:"addresses"`
		StorageVersion int      `json:"storage_version"`
		LogFile        string   `json:"log_file"`
		Monitor        bool     `json:"monitor"`
		MetricsAddress string   `json:"metrics_address"`
		Version        string   `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress     string   `json:"http_address"`
		GRPCAddress     string   `json:"grpc_address"`
		RequestTimeout  Duration `json:"request_timeout"`
		SignatureWindow Duration `json:"signature_window"`
	} `json:"server,omitempty"`

	Adapter struct {
		StorageURL      string   `json:"storage_url"`
		ChainURL        string   `json:"chain_url"`
		BlocksEndpoint  string   `json:"blocks_endpoint"`
		AccountEndpoint string   `json:"account_endpoint"`
		RequestTimeout  Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		ConnectTimeout        Duration `json:"connect_timeout"`
		BlockMessageTimeout   Duration `json:"block_message_timeout"`
		AccountMessageTimeout Duration `json:"account_message_timeout"`
		BackoffFloor          Duration `json:"backoff_floor"`
		BackoffCeiling        Duration `json:"backoff_ceiling"`
		MaxFailures           int      `json:"max_failures"`
		RetryBase             Duration `json:"retry_base"`
		RetryCap              Duration `json:"retry_cap"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			Network:        jsonCfg.App.Network,
			MasterKey:      jsonCfg.App.MasterKey,
			Passphrase:     jsonCfg.App.Passphrase,
			PassphraseSalt: jsonCfg.App.PassphraseSalt,
			Addresses:      jsonCfg.App.Addresses,
			StorageVersion: jsonCfg.App.StorageVersion,
			LogFile:        jsonCfg.App.LogFile,
			Monitor:        jsonCfg.App.Monitor,
			MetricsAddress: jsonCfg.App.MetricsAddress,
			Version:        jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Server: Server{
			HTTPAddress:     jsonCfg.Server.HTTPAddress,
			GRPCAddress:     jsonCfg.Server.GRPCAddress,
			RequestTimeout:  time.Duration(jsonCfg.Server.RequestTimeout),
			SignatureWindow: time.Duration(jsonCfg.Server.SignatureWindow),
		},
		Adapter: Adapter{
			StorageURL:      jsonCfg.Adapter.StorageURL,
			ChainURL:        jsonCfg.Adapter.ChainURL,
			BlocksEndpoint:  jsonCfg.Adapter.BlocksEndpoint,
			AccountEndpoint: jsonCfg.Adapter.AccountEndpoint,
			RequestTimeout:  time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			ConnectTimeout:        time.Duration(jsonCfg.Workers.ConnectTimeout),
			BlockMessageTimeout:   time.Duration(jsonCfg.Workers.BlockMessageTimeout),
			AccountMessageTimeout: time.Duration(jsonCfg.Workers.AccountMessageTimeout),
			BackoffFloor:          time.Duration(jsonCfg.Workers.BackoffFloor),
			BackoffCeiling:        time.Duration(jsonCfg.Workers.BackoffCeiling),
			MaxFailures:           jsonCfg.Workers.MaxFailures,
			RetryBase:             time.Duration(jsonCfg.Workers.RetryBase),
			RetryCap:              time.Duration(jsonCfg.Workers.RetryCap),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
