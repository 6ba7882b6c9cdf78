// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import "context"

// Tracer runs a traceroute to a single target.
//
//go:generate go tool moq -out tracer_moq.go . Tracer
type Tracer interface {
	// Trace probes target and passes every hop to emit, in TTL order and from
	// the calling goroutine, before it returns. It returns an error if the
	// target or options are invalid, ctx is done, or probes failed.
	Trace(ctx context.Context, target Target, opts Options, emit func(Hop)) error
}

// NewTracer returns a [Tracer] sending TCP probes.
func NewTracer() Tracer {
	return newTCPClient()
}
