// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"time"
)

// Gate admits one traceroute run at a time.
type Gate struct {
	sem     chan struct{}
	timeout time.Duration
}

// NewGate creates a gate. A timeout of 0 lets [Gate.Acquire] wait
// until the gate is free or the context is done.
func NewGate(timeout time.Duration) *Gate {
	return &Gate{
		sem:     make(chan struct{}, 1),
		timeout: timeout,
	}
}

// Acquire blocks until the gate is free.
// It returns [ErrGateTimeout] if the configured timeout elapsed first
// and the context's error if ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.sem <- struct{}{}:
		return nil
	default:
	}

	var expired <-chan time.Time
	if g.timeout > 0 {
		timer := time.NewTimer(g.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case g.sem <- struct{}{}:
		return nil
	case <-expired:
		return fmt.Errorf("%w after %v", ErrGateTimeout, g.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees the gate for the next run.
// Releasing a gate that is not held panics.
func (g *Gate) Release() {
	select {
	case <-g.sem:
	default:
		panic("traceroute: release of unheld gate")
	}
}

// Busy reports whether a run currently holds the gate.
func (g *Gate) Busy() bool {
	return len(g.sem) == 1
}
