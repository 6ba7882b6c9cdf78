// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/telekom/tracerelay/internal/helper"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// prober sends the probe for a single TTL.
//
//go:generate go tool moq -out prober_moq.go . prober
type prober interface {
	// probe sends the probe for target's hop TTL and reports the hop on the
	// target's hop channel. Nothing is reported if it returns an error.
	probe(ctx context.Context, target Target, opts Options) error
}

// hopper probes every TTL of a target concurrently.
type hopper struct {
	client     prober
	wg         sync.WaitGroup
	otelTracer trace.Tracer
	target     *Target
	opts       Options

	mu   sync.Mutex
	errs error
}

// run starts one probe per TTL. Every probe that is not canceled reports
// exactly one hop; a probe that failed after all retries reports a hop
// without answer and its error is kept for [hopper.err].
// It's the callers responsibility to wait for h.wg.
func (h *hopper) run(ctx context.Context) {
	for ttl := 1; ttl <= h.opts.MaxHops; ttl++ {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			ctx, hopSpan := h.otelTracer.Start(ctx, h.target.String(), trace.WithAttributes(
				attribute.Stringer("tcptrace.target.address", h.target),
				attribute.Int("tcptrace.target.ttl", ttl),
			))
			defer hopSpan.End()

			retry := helper.Retry(func(ctx context.Context) error {
				return h.client.probe(ctx, h.target.withHopTTL(ttl), h.opts)
			}, h.opts.Retry)

			err := retry(ctx)
			if err == nil || ctx.Err() != nil {
				return
			}
			hopSpan.RecordError(err)
			hopSpan.SetStatus(codes.Error, "Failed to execute hop probe")
			h.fail(fmt.Errorf("hop %d: %w", ttl, err))
			h.target.hopChan <- Hop{TTL: ttl, Addr: noAnswer}
		}()
	}
}

func (h *hopper) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = errors.Join(h.errs, err)
}

// err returns the errors of all failed probes.
func (h *hopper) err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.errs
}
