// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

const (
	runPath     = "/v1/traceroute"
	outputPath  = "/v1/traceroute/output"
	openapiPath = "/openapi"
	metricsPath = "/metrics"

	// outputTimeout bounds the wait for the main loop when reading the view.
	outputTimeout = 5 * time.Second
	maxBodySize   = 1 << 16
)

var errInvalidRequest = errors.New("invalid run request")

// RunRequest is the body of POST /v1/traceroute. Exactly one of Host
// and Args must be set. Args are passed to the engine as they are,
// starting with the program name.
type RunRequest struct {
	Host  string   `json:"host,omitempty"`
	Args  []string `json:"args,omitempty"`
	Async bool     `json:"async,omitempty"`
}

// Validate checks that the request names a target.
func (r *RunRequest) Validate() error {
	host := strings.TrimSpace(r.Host)
	switch {
	case host == "" && len(r.Args) == 0:
		return fmt.Errorf("%w: host or args required", errInvalidRequest)
	case host != "" && len(r.Args) > 0:
		return fmt.Errorf("%w: host and args are mutually exclusive", errInvalidRequest)
	case len(r.Args) > 0 && strings.TrimSpace(r.Args[0]) == "":
		return fmt.Errorf("%w: args must start with the program name", errInvalidRequest)
	}
	return nil
}

// Accepted is the body of the answer to an asynchronous run request.
type Accepted struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Handler serves the traceroute service.
type Handler struct {
	svc      *traceroute.Service
	loop     *traceroute.MainLoop
	registry prometheus.Gatherer
	view     *view
}

// NewHandler creates the handler and registers its view as listener of svc.
// The view is updated on loop, which has to run for the output to be served.
func NewHandler(svc *traceroute.Service, loop *traceroute.MainLoop, registry prometheus.Gatherer) *Handler {
	h := &Handler{
		svc:      svc,
		loop:     loop,
		registry: registry,
		view:     &view{},
	}
	h.view.register(svc)
	return h
}

// Routes returns the routes served by the handler.
func (h *Handler) Routes() []Route {
	routes := []Route{
		{Path: runPath, Method: http.MethodPost, Handler: h.handleRun},
		{Path: outputPath, Method: http.MethodGet, Handler: h.handleOutput},
		{Path: openapiPath, Method: http.MethodGet, Handler: h.handleOpenAPI},
	}
	if h.registry != nil {
		routes = append(routes, Route{
			Path:    metricsPath,
			Method:  http.MethodGet,
			Handler: promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}).ServeHTTP,
		})
	}
	return routes
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var req RunRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		log.DebugContext(ctx, "Malformed run request", "error", err)
		writeJSON(ctx, w, http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("%v: %v", errInvalidRequest, err)})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if req.Async {
		if len(req.Args) > 0 {
			h.svc.Go(context.WithoutCancel(ctx), req.Args)
		} else {
			h.svc.Run(ctx, strings.TrimSpace(req.Host), true)
		}
		writeJSON(ctx, w, http.StatusAccepted, Accepted{Status: "accepted"})
		return
	}

	var res traceroute.Result
	if len(req.Args) > 0 {
		res = h.svc.RunArgs(ctx, req.Args)
	} else {
		res = *h.svc.Run(ctx, strings.TrimSpace(req.Host), false)
	}
	writeJSON(ctx, w, http.StatusOK, res)
}

func (h *Handler) handleOutput(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), outputTimeout)
	defer cancel()

	var out Output
	if err := h.loop.Call(ctx, func() { out = h.view.snapshot() }); err != nil {
		logger.FromContext(ctx).WarnContext(ctx, "Main loop did not serve the output", "error", err)
		writeJSON(ctx, w, http.StatusServiceUnavailable, ErrorResponse{Error: "traceroute output unavailable"})
		return
	}
	writeJSON(ctx, w, http.StatusOK, out)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.FromContext(ctx).ErrorContext(ctx, "Failed to write response", "error", err)
	}
}
