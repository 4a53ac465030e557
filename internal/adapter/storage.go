// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/config"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/utils"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/models"
)

type httpStorageAdapter struct {
	client    *utils.HTTPClient
	validator validators.Validator
	logger    *logger.Logger
}

// NewHTTPStorageAdapter constructs an HTTP [StorageAdapter] for
// cfg.StorageURL with cfg.RequestTimeout per request.
func NewHTTPStorageAdapter(cfg config.ClientAdapter, v validators.Validator, log *logger.Logger) (StorageAdapter, error) {
	client, err := newClient(cfg.StorageURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid storage url: %w", err)
	}

	return &httpStorageAdapter{client: client, validator: v, logger: log}, nil
}

// ReadRecord implements [StorageAdapter].
func (h *httpStorageAdapter) ReadRecord(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(pathStorageRead)
	if err != nil {
		return models.ReadResponse{}, fmt.Errorf("%w: read record: %w", ErrRequest, err)
	}

	var out models.ReadResponse
	if err = decode(ctx, h.validator, resp, &out); err != nil {
		h.logger.Err(err).Str("func", "*httpStorageAdapter.ReadRecord").Int("status", resp.StatusCode()).Msg("read failed")
		return models.ReadResponse{}, err
	}

	return out, nil
}

// WriteRecord implements [StorageAdapter].
func (h *httpStorageAdapter) WriteRecord(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(pathStorageWrite)
	if err != nil {
		return models.WriteResponse{}, fmt.Errorf("%w: write record: %w", ErrRequest, err)
	}

	var out models.WriteResponse
	if err = decode(ctx, h.validator, resp, &out); err != nil {
		h.logger.Err(err).Str("func", "*httpStorageAdapter.WriteRecord").Int("status", resp.StatusCode()).Msg("write failed")
		return models.WriteResponse{}, err
	}

	h.logger.Debug().
		Str("func", "*httpStorageAdapter.WriteRecord").
		Bool("updated", out.Updated).
		Int64("seq", out.Current.Seq).
		Msg("write answered")

	return out, nil
}
