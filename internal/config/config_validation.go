// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
)

// validate checks the merged [StructuredConfig] fields shared by both
// binaries.
func (cfg *StructuredConfig) validate() error {
	switch cfg.App.Network {
	case "", NetworkMainnet, NetworkSandbox:
	default:
		return fmt.Errorf("%w: unknown network %q", ErrInvalidAppConfigs, cfg.App.Network)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.App.Network != NetworkMainnet && cfg.App.Network != NetworkSandbox {
		return fmt.Errorf("%w: unknown network %q", ErrInvalidAppConfigs, cfg.App.Network)
	}
	if cfg.App.MasterKey != "" {
		key, err := hex.DecodeString(cfg.App.MasterKey)
		if err != nil || len(key) < 32 {
			return fmt.Errorf("%w: master key must be at least 32 hex encoded bytes", ErrInvalidAppConfigs)
		}
	} else if cfg.App.Passphrase == "" || cfg.App.PassphraseSalt == "" {
		return fmt.Errorf("%w: master key or passphrase with salt is required", ErrInvalidAppConfigs)
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if !validURL(cfg.Adapter.StorageURL, "http", "https") ||
		!validURL(cfg.Adapter.ChainURL, "http", "https") ||
		!validURL(cfg.Adapter.BlocksEndpoint, "ws", "wss") ||
		cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}
	if cfg.Adapter.AccountEndpoint != "" && !validURL(cfg.Adapter.AccountEndpoint, "ws", "wss") {
		return ErrInvalidAdapterConfigs
	}

	w := cfg.Workers
	if w.ConnectTimeout <= 0 || w.BlockMessageTimeout <= 0 || w.AccountMessageTimeout <= 0 ||
		w.BackoffFloor <= 0 || w.BackoffCeiling < w.BackoffFloor || w.MaxFailures <= 0 ||
		w.RetryBase <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 || cfg.Server.SignatureWindow <= 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}

func validURL(raw string, schemes ...string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return true
		}
	}
	return false
}
