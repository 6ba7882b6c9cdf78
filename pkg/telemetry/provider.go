// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides the prometheus registry and the OpenTelemetry
// tracer provider of the process.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/telekom/tracerelay/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "tracerelay"

// Span batching of the tracer provider.
const (
	batchTimeout = 5 * time.Second
	maxQueueSize = 1000
	maxBatchSize = 100
)

var _ Provider = (*provider)(nil)

// Provider owns the metrics registry and the tracer provider of the relay.
//
//go:generate go tool moq -out provider_moq.go . Provider
type Provider interface {
	// GetRegistry returns the registry the relay's collectors are registered with.
	GetRegistry() *prometheus.Registry
	// InitTracing installs the global tracer provider if tracing is enabled.
	InitTracing(ctx context.Context) error
	// Shutdown flushes pending spans.
	Shutdown(ctx context.Context) error
}

type provider struct {
	config   Config
	version  string
	registry *prometheus.Registry
	tp       *sdktrace.TracerProvider
}

// New creates a provider whose registry already holds the go and process collectors.
// version is reported as the service version of exported spans.
func New(config Config, version string) Provider { //nolint:gocritic
	return &provider{
		config:   config,
		version:  version,
		registry: newRegistry(),
	}
}

func newRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (p *provider) GetRegistry() *prometheus.Registry {
	return p.registry
}

// InitTracing installs a global tracer provider exporting spans of the
// traceroute runs. With tracing disabled the global provider is left alone,
// so spans are dropped by otel's default provider.
func (p *provider) InitTracing(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if !p.config.Enabled {
		log.DebugContext(ctx, "Tracing disabled")
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(p.version),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := p.config.Exporter.Create(ctx, &p.config)
	if err != nil {
		return fmt.Errorf("failed to create %s exporter: %w", p.config.Exporter, err)
	}

	p.tp = sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter,
			sdktrace.WithBatchTimeout(batchTimeout),
			sdktrace.WithMaxQueueSize(maxQueueSize),
			sdktrace.WithMaxExportBatchSize(maxBatchSize),
		)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(p.tp)
	log.InfoContext(ctx, "Tracing initialized", "exporter", p.config.Exporter.String())
	return nil
}

// Shutdown flushes pending spans and stops the tracer provider.
// It is a no-op if tracing was never initialized.
func (p *provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	logger.FromContext(ctx).DebugContext(ctx, "Tracing shut down")
	return nil
}
