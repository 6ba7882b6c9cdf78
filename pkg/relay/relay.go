// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package relay wires the traceroute service, its main loop, the api server
// and the telemetry into one long running process.
package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/telekom/tracerelay/internal/engine"
	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/pkg/api"
	"github.com/telekom/tracerelay/pkg/config"
	"github.com/telekom/tracerelay/pkg/telemetry"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

const shutdownTimeout = time.Second * 90

// Relay is the server process.
type Relay struct {
	// config is the startup configuration
	config *config.Config
	// api serves the service over http
	api api.API
	// telemetry provides the metrics registry and tracing
	telemetry telemetry.Provider
	// service runs the traceroutes
	service *traceroute.Service
	// loop delivers the notifications of the service
	loop *traceroute.MainLoop
	// cErr is used to handle non-recoverable errors of the components
	cErr chan error
	// cDone is used to signal that the relay was shut down
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New creates a relay from a validated configuration.
func New(cfg *config.Config, version string) (*Relay, error) {
	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return newRelay(cfg, version, eng)
}

func newRelay(cfg *config.Config, version string, eng traceroute.Engine) (*Relay, error) {
	tel := telemetry.New(cfg.Telemetry, version)
	loop := traceroute.NewMainLoop()
	svc := traceroute.New(cfg.Service, eng, loop)

	registry := tel.GetRegistry()
	for _, c := range svc.Collectors() {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	if err := telemetry.RegisterBuildInfo(registry, version, cfg.Engine.Kind.String()); err != nil {
		return nil, fmt.Errorf("failed to register build info: %w", err)
	}

	return &Relay{
		config:    cfg,
		api:       api.New(cfg.Api),
		telemetry: tel,
		service:   svc,
		loop:      loop,
		cErr:      make(chan error, 2),
		cDone:     make(chan struct{}, 1),
	}, nil
}

// Service returns the traceroute service of the relay.
func (r *Relay) Service() *traceroute.Service {
	return r.service
}

// Run starts all components and blocks until ctx is done or a component
// failed. It always returns [ErrFinalShutdown] after shutting down.
func (r *Relay) Run(ctx context.Context) error {
	ctx, cancel := logger.NewContextWithLogger(ctx)
	log := logger.FromContext(ctx)
	defer cancel()

	if err := r.telemetry.InitTracing(ctx); err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	h := api.NewHandler(r.service, r.loop, r.telemetry.GetRegistry())
	if err := r.api.RegisterRoutes(ctx, h.Routes()...); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		if err := r.loop.Run(loopCtx); err != nil && loopCtx.Err() == nil {
			r.cErr <- fmt.Errorf("main loop stopped: %w", err)
		}
	}()

	go func() {
		r.cErr <- r.api.Run(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			r.shutdown(ctx, stopLoop, loopDone)
		case err := <-r.cErr:
			if err != nil {
				log.ErrorContext(ctx, "Non-recoverable error in relay component", "error", err)
				r.shutdown(ctx, stopLoop, loopDone)
			}
		case <-r.cDone:
			log.InfoContext(ctx, "Relay was shut down")
			return ErrFinalShutdown
		}
	}
}

// shutdown stops the api, waits for running traceroutes, stops the main
// loop and flushes the telemetry.
func (r *Relay) shutdown(ctx context.Context, stopLoop context.CancelFunc, loopDone <-chan struct{}) {
	errC := ctx.Err()
	log := logger.FromContext(ctx)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	r.shutOnce.Do(func() {
		log.InfoContext(ctx, "Shutting down relay")
		var sErrs ErrShutdown
		sErrs.errAPI = r.api.Shutdown(ctx)
		sErrs.errRuns = r.awaitRuns(ctx)
		stopLoop()
		<-loopDone
		sErrs.errTelemetry = r.telemetry.Shutdown(ctx)

		if sErrs.HasError() {
			log.ErrorContext(ctx, "Failed to shutdown gracefully", "contextError", errC, "error", sErrs)
		}

		// Signal that shutdown is complete
		r.cDone <- struct{}{}
	})
}

// awaitRuns waits for background runs. Their notifications are delivered
// as long as the loop is still running.
func (r *Relay) awaitRuns(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.service.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("traceroute still running: %w", ctx.Err())
	}
}
