// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/utils"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/go-resty/resty/v2"
)

const (
	pathStorageRead  = "/storage/read"
	pathStorageWrite = "/storage/write"
)

// newClient configures a resty client for baseURL.
func newClient(rawURL string, timeout time.Duration) (*utils.HTTPClient, error) {
	baseURL, err := normalizeBaseURL(rawURL)
	if err != nil {
		return nil, err
	}

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return client, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAddress
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// decode validates a 2xx body into dst.
func decode(ctx context.Context, v validators.Validator, resp *resty.Response, dst any) error {
	if err := mapHTTPError(resp); err != nil {
		return err
	}
	if err := validators.DecodeJSON(ctx, v, resp.Body(), dst); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedResponse, resp.Request.URL, err)
	}
	return nil
}
