// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/MKhiriev/go-ledger-sync/internal/crypto"
	"github.com/MKhiriev/go-ledger-sync/internal/validators"
	"github.com/MKhiriev/go-ledger-sync/models"
)

// StorageValidationService checks request shape, time window and signature
// before handing a request to the wrapped service.
type StorageValidationService struct {
	inner     StorageService
	validator validators.Validator
	window    time.Duration
	now       func() time.Time
}

// NewStorageValidationService accepts request times in (now, now+window].
func NewStorageValidationService(window time.Duration) StorageServiceWrapper {
	return &StorageValidationService{
		validator: validators.NewStructValidator(),
		window:    window,
		now:       time.Now,
	}
}

func (v *StorageValidationService) Read(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.ReadResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := v.checkTime(req.Time); err != nil {
		return models.ReadResponse{}, err
	}

	pub, sig, err := decodeAuth(req.Key, req.Signature)
	if err != nil {
		return models.ReadResponse{}, err
	}
	if err := verify(pub, crypto.ReadPayload(pub, uint32(req.Time)), sig); err != nil {
		return models.ReadResponse{}, err
	}

	return v.inner.Read(ctx, req)
}

func (v *StorageValidationService) Write(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.WriteResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Seq > math.MaxUint32 {
		return models.WriteResponse{}, fmt.Errorf("%w: seq %d out of range", ErrInvalidRequest, req.Seq)
	}
	if err := v.checkTime(req.Time); err != nil {
		return models.WriteResponse{}, err
	}

	pub, sig, err := decodeAuth(req.Key, req.Signature)
	if err != nil {
		return models.WriteResponse{}, err
	}
	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		return models.WriteResponse{}, fmt.Errorf("%w: value: %w", ErrInvalidRequest, err)
	}
	payload := crypto.WritePayload(pub, value, uint32(req.Seq), uint32(req.Time))
	if err := verify(pub, payload, sig); err != nil {
		return models.WriteResponse{}, err
	}

	return v.inner.Write(ctx, req)
}

func (v *StorageValidationService) Wrap(wrapped StorageService) StorageService {
	v.inner = wrapped
	return v
}

func (v *StorageValidationService) checkTime(unix int64) error {
	now := v.now()
	t := time.Unix(unix, 0)
	if !t.After(now) || t.After(now.Add(v.window)) || unix > math.MaxUint32 {
		return fmt.Errorf("%w: %d", ErrRequestExpired, unix)
	}
	return nil
}

func decodeAuth(key, signature string) (pub, sig []byte, err error) {
	if pub, err = base64.StdEncoding.DecodeString(key); err != nil {
		return nil, nil, fmt.Errorf("%w: key: %w", ErrInvalidRequest, err)
	}
	if sig, err = base64.StdEncoding.DecodeString(signature); err != nil {
		return nil, nil, fmt.Errorf("%w: signature: %w", ErrInvalidRequest, err)
	}
	return pub, sig, nil
}

func verify(pub, payload, sig []byte) error {
	ok, err := crypto.Verify(pub, payload, sig)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}
