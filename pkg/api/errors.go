// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
)

var (
	// ErrServeFailed is returned when the server stopped serving unexpectedly.
	ErrServeFailed = errors.New("failed serving API")
	// ErrInvalidAddress is returned when the listening address is not host:port.
	ErrInvalidAddress = errors.New("invalid listening address")
	// ErrMissingCertificate is returned when tls is enabled without certificate or key.
	ErrMissingCertificate = errors.New("tls certificate and key are required")
)

// ErrCreateOpenapiSchema is returned when the schema of a payload type cannot be generated.
type ErrCreateOpenapiSchema struct {
	name string
	err  error
}

func (e *ErrCreateOpenapiSchema) Error() string {
	return fmt.Sprintf("failed to get schema for %s: %v", e.name, e.err)
}

func (e *ErrCreateOpenapiSchema) Unwrap() error {
	return e.err
}
