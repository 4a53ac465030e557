// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"

	"github.com/google/uuid"
)

// UUIDGenerator produces trace ids. V7 ids sort by creation time.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}

// EnsureTraceID returns ctx unchanged when it already carries a trace id and
// a copy with a fresh one otherwise.
func (g *UUIDGenerator) EnsureTraceID(ctx context.Context) (context.Context, string) {
	if id, ok := GetTraceIDFromContext(ctx); ok {
		return ctx, id
	}
	id := g.Generate()
	return WithTraceID(ctx, id), id
}
