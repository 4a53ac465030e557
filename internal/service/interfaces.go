// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"

	"github.com/MKhiriev/go-ledger-sync/models"
)

// StorageService serves the encrypted record protocol.
type StorageService interface {
	// Read returns the current record of req.Key.
	Read(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error)
	// Write stores req.Value if req.Seq is the current sequence. On rejection
	// the response carries the state that won.
	Write(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error)
}

// AppInfoService reports build information of the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// StorageServiceWrapper defines middleware composition for StorageService.
// Implementations wrap an existing StorageService to add behavior such as
// validation.
type StorageServiceWrapper interface {
	Wrap(StorageService) StorageService
}
