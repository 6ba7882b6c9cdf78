// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol used to export spans.
type Exporter string

const (
	// HTTP exports spans via OTLP over HTTP.
	HTTP Exporter = "http"
	// GRPC exports spans via OTLP over gRPC.
	GRPC Exporter = "grpc"
	// STDOUT prints spans to stdout.
	STDOUT Exporter = "stdout"
	// NOOP drops all spans.
	NOOP Exporter = "noop"
)

// ErrInvalidExporter is returned for an unknown exporter.
var ErrInvalidExporter = errors.New("invalid exporter")

// String returns the string representation of the exporter.
func (e Exporter) String() string {
	return string(e)
}

// Validate returns an error if the exporter is unknown.
// The empty exporter is valid and behaves like [NOOP].
func (e Exporter) Validate() error {
	switch e {
	case HTTP, GRPC, STDOUT, NOOP, "":
		return nil
	default:
		return fmt.Errorf("%w: %q, must be one of %q, %q, %q or %q", ErrInvalidExporter, e, HTTP, GRPC, STDOUT, NOOP)
	}
}

// IsExporting reports whether the exporter sends spans to a collector.
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

type exporterFactory func(ctx context.Context, config *Config) (sdktrace.SpanExporter, error)

var registry = map[Exporter]exporterFactory{
	HTTP:   newHTTPExporter,
	GRPC:   newGRPCExporter,
	STDOUT: newStdoutExporter,
	NOOP:   newNoopExporter,
}

// Create builds the span exporter described by config.
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	if !config.Enabled || e == "" {
		return newNoopExporter(ctx, config)
	}
	factory, ok := registry[e]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidExporter, e)
	}
	return factory(ctx, config)
}

func newHTTPExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.Url),
		otlptracehttp.WithHeaders(config.headers()),
	}
	tlsCfg, err := config.TLS.clientConfig()
	if err != nil {
		return nil, err
	}
	if tlsCfg == nil {
		opts = append(opts, otlptracehttp.WithInsecure())
	} else {
		opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
	}
	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(config.Url),
		otlptracegrpc.WithHeaders(config.headers()),
	}
	tlsCfg, err := config.TLS.clientConfig()
	if err != nil {
		return nil, err
	}
	if tlsCfg == nil {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg)))
	}
	return otlptracegrpc.New(ctx, opts...)
}

func newStdoutExporter(_ context.Context, _ *Config) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func newNoopExporter(_ context.Context, _ *Config) (sdktrace.SpanExporter, error) {
	return &noopExporter{}, nil
}

// headers returns the request headers sent to the collector.
func (c *Config) headers() map[string]string {
	if c.Token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.Token}
}

// clientConfig returns nil if TLS is disabled.
func (c *TLSConfig) clientConfig() (*tls.Config, error) {
	if !c.Enabled {
		return nil, nil //nolint:nilnil // nil config selects an insecure connection
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.CertPath == "" {
		return cfg, nil
	}

	pem, err := os.ReadFile(c.CertPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate %q: %w", c.CertPath, err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %q", c.CertPath)
	}
	cfg.RootCAs = pool
	return cfg, nil
}

var _ sdktrace.SpanExporter = (*noopExporter)(nil)

type noopExporter struct{}

func (*noopExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	return nil
}

func (*noopExporter) Shutdown(context.Context) error {
	return nil
}
