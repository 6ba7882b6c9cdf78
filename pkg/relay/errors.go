// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"errors"
	"fmt"
)

// ErrFinalShutdown is returned by [Relay.Run] once all components have been shut down.
var ErrFinalShutdown = errors.New("relay was shut down")

// ErrShutdown holds the errors that occurred while shutting down the components.
type ErrShutdown struct {
	errAPI       error
	errRuns      error
	errTelemetry error
}

// HasError returns true if any of the errors are set
func (e ErrShutdown) HasError() bool {
	return e.errAPI != nil || e.errRuns != nil || e.errTelemetry != nil
}

func (e ErrShutdown) Error() string {
	return fmt.Sprintf("shutdown failed: api: %v, runs: %v, telemetry: %v", e.errAPI, e.errRuns, e.errTelemetry)
}

func (e ErrShutdown) Unwrap() []error {
	return []error{e.errAPI, e.errRuns, e.errTelemetry}
}
