// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package api serves the traceroute service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/telekom/tracerelay/internal/logger"
)

var _ API = (*api)(nil)

// API is an http server serving registered routes.
type API interface {
	// Run serves until ctx is done or the server is shut down.
	Run(ctx context.Context) error
	// Shutdown gracefully stops the server.
	Shutdown(ctx context.Context) error
	// RegisterRoutes adds routes to the server. It must be called before Run.
	RegisterRoutes(ctx context.Context, routes ...Route) error
	// Handler returns the router.
	Handler() http.Handler
}

type api struct {
	server *http.Server
	router chi.Router
	tls    TLSConfig
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Route is a single endpoint. Method "*" matches every method.
type Route struct {
	Path    string
	Method  string
	Handler http.HandlerFunc
}

// New creates an api server listening on the configured address.
func New(cfg Config) API {
	r := chi.NewRouter()
	return &api{
		server: &http.Server{
			Addr:              cfg.ListeningAddress,
			Handler:           r,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		router: r,
		tls:    cfg.Tls,
	}
}

// Run serves the registered routes. It returns nil after a graceful
// shutdown and an error if serving failed or ctx was canceled first.
func (a *api) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)

	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		log.ErrorContext(ctx, "Failed to listen", "addr", a.server.Addr, "error", err)
		return fmt.Errorf("%w: %w", ErrServeFailed, err)
	}

	cErr := make(chan error, 1)
	go func() {
		defer close(cErr)
		log.InfoContext(ctx, "Serving api", "addr", ln.Addr().String(), "tls", a.tls.Enabled)
		var sErr error
		if a.tls.Enabled {
			sErr = a.server.ServeTLS(ln, a.tls.CertPath, a.tls.KeyPath)
		} else {
			sErr = a.server.Serve(ln)
		}
		if sErr != nil && !errors.Is(sErr, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Failed to serve api", "error", sErr)
			cErr <- sErr
		}
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrServeFailed, ctx.Err())
	case err := <-cErr:
		if err == nil {
			log.InfoContext(ctx, "Api server closed")
			return nil
		}
		return fmt.Errorf("%w: %w", ErrServeFailed, err)
	}
}

// Shutdown gracefully stops the server, waiting at most 30 seconds
// for open requests.
func (a *api) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to shutdown api server", "error", err)
		return fmt.Errorf("failed shutting down API: %w", err)
	}
	return nil
}

// RegisterRoutes registers routes on the router. Every route gets the
// logger of ctx and recovers from panics.
func (a *api) RegisterRoutes(ctx context.Context, routes ...Route) error {
	r := a.router.With(logger.Middleware(ctx), middleware.Recoverer)
	for _, route := range routes {
		if route.Handler == nil {
			return fmt.Errorf("route %s %s has no handler", route.Method, route.Path)
		}
		if route.Method == "*" {
			r.HandleFunc(route.Path, route.Handler)
			continue
		}
		r.MethodFunc(route.Method, route.Path, route.Handler)
	}

	// Answers with 200 OK, used as liveness probe.
	a.router.Handle("/", okHandler(ctx))
	return nil
}

func (a *api) Handler() http.Handler {
	return a.router
}

// okHandler returns a handler that will serve status ok
func okHandler(ctx context.Context) http.Handler {
	log := logger.FromContext(ctx)
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			log.Error("Could not write response", "error", err.Error())
		}
	})
}
