// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrInvalidEngine is returned when the engine section is invalid
	ErrInvalidEngine = errors.New("invalid engine configuration")
	// ErrInvalidService is returned when the service section is invalid
	ErrInvalidService = errors.New("invalid service configuration")
	// ErrInvalidAPI is returned when the api section is invalid
	ErrInvalidAPI = errors.New("invalid api configuration")
	// ErrInvalidTelemetry is returned when the telemetry section is invalid
	ErrInvalidTelemetry = errors.New("invalid telemetry configuration")
)
