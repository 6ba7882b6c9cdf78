// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package framework runs a complete relay for end-to-end tests.
package framework

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/telekom/tracerelay/internal/engine"
	"github.com/telekom/tracerelay/pkg/config"
	"github.com/telekom/tracerelay/pkg/relay"
)

// E2E is an end-to-end test of a relay serving on a free local port.
type E2E struct {
	t      *testing.T
	config config.Config
	relay  *relay.Relay

	running int32
}

// New creates a test whose relay runs every traceroute through sh,
// so the arguments of a run form a shell command line.
func New(t *testing.T) *E2E {
	t.Helper()
	cfg := config.Default()
	cfg.Engine = engine.Config{Kind: engine.KindExec, Binary: "sh"}
	cfg.Api.ListeningAddress = freeAddress(t)
	return &E2E{t: t, config: cfg}
}

// WithConfig lets modify change the configuration before the relay is created.
func (e *E2E) WithConfig(modify func(c *config.Config)) *E2E {
	modify(&e.config)
	return e
}

// Run creates the relay and runs it until ctx is done.
// It returns nil after a regular shutdown.
func (e *E2E) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		e.t.Fatal("E2E.Run must be called once")
	}

	if err := e.config.Validate(ctx); err != nil {
		return err
	}
	r, err := relay.New(&e.config, "e2e")
	if err != nil {
		return err
	}
	e.relay = r

	if err = r.Run(ctx); !errors.Is(err, relay.ErrFinalShutdown) {
		return err
	}
	return nil
}

// URL returns the url of path on the relay.
func (e *E2E) URL(path string) string {
	return "http://" + e.config.Api.ListeningAddress + path
}

// AwaitStartup waits for the provided URL to be ready.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitStartup(u string, failureTimeout time.Duration) *E2E {
	e.t.Helper()
	const backoff = 50 * time.Millisecond

	deadline := time.Now().Add(failureTimeout)
	for time.Now().Before(deadline) {
		if !e.isRunning() {
			e.t.Fatal("E2E.AwaitStartup must be called after E2E.Run")
		}
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, http.NoBody)
		if err != nil {
			e.t.Fatalf("Failed to create request: %v", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return e
			}
		}

		<-time.After(backoff)
	}

	e.t.Fatalf("%s did not become ready within %v", u, failureTimeout)
	return e
}

// isRunning returns true if the test is running.
func (e *E2E) isRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}

// freeAddress returns a local address that was free a moment ago.
func freeAddress(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to find a free port: %v", err)
	}
	defer func() { _ = ln.Close() }()
	return ln.Addr().String()
}
