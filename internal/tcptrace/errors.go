// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"errors"
)

var (
	// ErrInvalidTarget is returned when the target of a trace is malformed.
	ErrInvalidTarget = errors.New("invalid traceroute target")
	// ErrInvalidOptions is returned when the trace options are out of range.
	ErrInvalidOptions = errors.New("invalid traceroute options")
)

// errICMPNotAvailable means the raw ICMP socket could not be opened,
// usually because the process lacks CAP_NET_RAW.
var errICMPNotAvailable = errors.New("no NET_RAW capabilities, ICMP not available")

// isTracerouteError reports whether err is an expected outcome of a
// single probe that still yields a hop, namely a silent router or a
// missing ICMP listener.
func isTracerouteError(err error) bool {
	return errors.Is(err, errICMPNotAvailable) ||
		errors.Is(err, context.DeadlineExceeded)
}
