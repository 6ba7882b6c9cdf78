// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package engine provides the traceroute engines the service can run.
package engine

import (
	"errors"
	"fmt"

	"github.com/telekom/tracerelay/internal/tcptrace"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

// Exit codes of the engines besides the ones defined by [traceroute].
const (
	// codeProbeError is returned when probing failed.
	codeProbeError = 1
	// codeUsage is returned for invalid arguments or unresolvable hosts.
	codeUsage = 2
)

// ErrUnknownKind is returned for an unknown engine kind.
var ErrUnknownKind = errors.New("unknown engine kind")

// New returns the engine selected by cfg.
func New(cfg Config) (traceroute.Engine, error) {
	switch cfg.Kind {
	case KindExec:
		return NewExec(cfg.Binary), nil
	case KindTCP:
		return NewTCP(tcptrace.NewTracer(), cfg.TCP), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
