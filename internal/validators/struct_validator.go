// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// StructValidator enforces `validate` tags.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator returns a Validator backed by go-playground/validator.
// Field names in errors use the json tag name.
func NewStructValidator() *StructValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &StructValidator{validate: v}
}

// Validate implements [Validator].
func (s *StructValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	var err error
	if len(fields) == 0 {
		err = s.validate.StructCtx(ctx, obj)
	} else {
		err = s.validate.StructPartialCtx(ctx, obj, fields...)
	}
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		failed := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			failed = append(failed, fe.Namespace()+":"+fe.Tag())
		}
		return fmt.Errorf("%w: %s", ErrValidation, strings.Join(failed, ", "))
	}

	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// DecodeJSON unmarshals data into dst and validates the result.
func DecodeJSON(ctx context.Context, v Validator, data []byte, dst any) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidJSON, err)
	}

	return v.Validate(ctx, dst)
}
