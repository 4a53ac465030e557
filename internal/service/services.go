// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"github.com/MKhiriev/go-ledger-sync/internal/config"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/store"
)

type Services struct {
	StorageService StorageService
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.ServerConfig, logger *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.Version, logger)
	if err != nil {
		return nil, err
	}

	storage := NewStorageValidationService(cfg.Server.SignatureWindow).
		Wrap(NewStorageService(storages.RecordRepository, logger))

	return &Services{
		StorageService: storage,
		AppInfoService: appInfo,
	}, nil
}
