// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/MKhiriev/go-ledger-sync/internal/logger"
	"github.com/MKhiriev/go-ledger-sync/internal/store"
	"github.com/MKhiriev/go-ledger-sync/models"
)

type storageService struct {
	recordRepository store.RecordRepository

	logger *logger.Logger
}

// NewStorageService returns the repository-backed StorageService. It trusts
// its input: requests are expected to be checked by
// [StorageValidationService] first.
func NewStorageService(recordRepository store.RecordRepository, logger *logger.Logger) StorageService {
	return &storageService{
		recordRepository: recordRepository,
		logger:           logger,
	}
}

func (s *storageService) Read(ctx context.Context, req models.ReadRequest) (models.ReadResponse, error) {
	key, err := canonicalKey(req.Key)
	if err != nil {
		return models.ReadResponse{}, err
	}

	record, err := s.recordRepository.Read(ctx, key)
	if err != nil {
		return models.ReadResponse{}, err
	}

	return models.ReadResponse{OK: true, Value: toRecordValue(record)}, nil
}

func (s *storageService) Write(ctx context.Context, req models.WriteRequest) (models.WriteResponse, error) {
	key, err := canonicalKey(req.Key)
	if err != nil {
		return models.WriteResponse{}, err
	}
	value, err := base64.StdEncoding.DecodeString(req.Value)
	if err != nil {
		return models.WriteResponse{}, fmt.Errorf("%w: value: %w", ErrInvalidRequest, err)
	}

	updated, current, err := s.recordRepository.CompareAndSwap(ctx, key, req.Seq, value)
	if err != nil {
		return models.WriteResponse{}, err
	}

	s.logger.Debug().
		Str("func", "*storageService.Write").
		Bool("updated", updated).
		Int64("seq", current.Seq).
		Msg("record write handled")

	return models.WriteResponse{Updated: updated, Current: toRecordValue(current)}, nil
}

// canonicalKey re-encodes the base64 public key so equivalent encodings
// address the same record.
func canonicalKey(key string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return "", fmt.Errorf("%w: key: %w", ErrInvalidRequest, err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func toRecordValue(record models.StoredRecord) models.RecordValue {
	v := models.RecordValue{Seq: record.Seq}
	if record.Value != nil {
		encoded := base64.StdEncoding.EncodeToString(record.Value)
		v.Value = &encoded
	}
	return v
}
