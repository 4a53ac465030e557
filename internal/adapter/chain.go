// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-ledger-sync/internal/config"
	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/utils"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/models"
)

type httpChainAdapter struct {
	client    *utils.HTTPClient
	validator validators.Validator
	logger    *logger.Logger
}

// NewHTTPChainAdapter constructs an HTTP [ChainAdapter] for cfg.ChainURL.
func NewHTTPChainAdapter(cfg config.ClientAdapter, v validators.Validator, log *logger.Logger) (ChainAdapter, error) {
	client, err := newClient(cfg.ChainURL, cfg.RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid chain url: %w", err)
	}

	return &httpChainAdapter{client: client, validator: v, logger: log}, nil
}

// LatestBlock implements [ChainAdapter]. GET /block/latest.
func (h *httpChainAdapter) LatestBlock(ctx context.Context) (int64, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		Get("/block/latest")
	if err != nil {
		return 0, fmt.Errorf("%w: latest block: %w", ErrRequest, err)
	}

	var out models.LastBlock
	if err = decode(ctx, h.validator, resp, &out); err != nil {
		h.logger.Err(err).Str("func", "*httpChainAdapter.LatestBlock").Msg("latest block failed")
		return 0, err
	}

	return out.Last.Seqno, nil
}

// AccountLite implements [ChainAdapter]. GET /block/{seqno}/{address}/lite.
func (h *httpChainAdapter) AccountLite(ctx context.Context, seqno int64, address string) (models.AccountLite, error) {
	if address == "" {
		return models.AccountLite{}, ErrEmptyAddress
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"seqno":   strconv.FormatInt(seqno, 10),
			"address": address,
		}).
		Get("/block/{seqno}/{address}/lite")
	if err != nil {
		return models.AccountLite{}, fmt.Errorf("%w: account lite: %w", ErrRequest, err)
	}

	var out models.AccountLiteResponse
	if err = decode(ctx, h.validator, resp, &out); err != nil {
		h.logger.Err(err).
			Str("func", "*httpChainAdapter.AccountLite").
			Str("address", address).
			Int64("seqno", seqno).
			Msg("account fetch failed")
		return models.AccountLite{}, err
	}

	return out.Account, nil
}
