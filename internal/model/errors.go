// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "fmt"

// MissingFieldError reports a required key that was absent or null in a
// backend payload.
type MissingFieldError struct {
	Type  string
	Field string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("decode %s: missing required field %q", e.Type, e.Field)
}

// required dereferences a decoded pointer field, failing when the key was
// not present in the payload.
func required[T any](typ, field string, v *T) (T, error) {
	if v == nil {
		var zero T
		return zero, &MissingFieldError{Type: typ, Field: field}
	}
	return *v, nil
}
