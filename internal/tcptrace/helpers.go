// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"

	"github.com/telekom/tracerelay/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// basePort is the starting port for the TCP connection
	basePort = 30000
	// portRange is the range of ports to generate a random port from
	portRange = 10000
)

// randomPort returns a random port in the interval [30000, 40000)
func randomPort() int {
	return rand.N(portRange) + basePort // #nosec G404 // math.rand is fine here, we're not doing encryption
}

// resolveName performs a reverse DNS lookup for the given IP address.
// If the lookup fails or returns no names, it returns an empty string.
func resolveName(ctx context.Context, addr net.Addr) string {
	ip := ipFromAddr(addr)
	if ip == nil {
		return ""
	}

	names, err := net.DefaultResolver.LookupAddr(ctx, ip.String())
	if err != nil || len(names) == 0 {
		return ""
	}
	return names[0]
}

// ipFromAddr extracts the IP address from a [net.Addr].
func ipFromAddr(addr net.Addr) net.IP {
	switch a := addr.(type) {
	case *net.UDPAddr:
		return a.IP
	case *net.TCPAddr:
		return a.IP
	case *net.IPAddr:
		return a.IP
	}
	return nil
}

// hopAddr returns the printable IP of addr or "*" if it has none.
func hopAddr(addr net.Addr) string {
	if ip := ipFromAddr(addr); ip != nil {
		return ip.String()
	}
	return noAnswer
}

// wrapError wraps an error with a message and logs it.
// It also records the error in the current OpenTelemetry span.
func wrapError(ctx context.Context, err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	span := trace.SpanFromContext(ctx)
	caser := cases.Title(language.English)
	text := fmt.Sprintf(msg, args...)

	log.DebugContext(ctx, caser.String(text), "error", err)
	span.SetStatus(codes.Error, text)
	span.RecordError(err)
	return fmt.Errorf("%s: %w", text, err)
}

// isExpectedDialError reports whether err is how a dial fails when the
// probe expired on its way to the target.
func isExpectedDialError(err error) bool {
	var ne net.Error
	return errors.Is(err, unix.EHOSTUNREACH) ||
		errors.Is(err, unix.ENETUNREACH) ||
		errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout())
}

// recordTCPError records the error from dialing a TCP connection.
// It returns nil if the error is expected for an expired probe.
func recordTCPError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)

	if !isExpectedDialError(err) {
		logger.FromContext(ctx).DebugContext(ctx, "Failed to dial TCP connection", "error", err)
		span.AddEvent("TCP connection failed", trace.WithAttributes(
			attribute.String("tcptrace.target.error", err.Error()),
		))
		span.SetStatus(codes.Error, "Failed to dial TCP connection")
		return fmt.Errorf("failed to dial TCP connection: %w", err)
	}

	span.AddEvent("Probe expired", trace.WithAttributes(
		attribute.String("tcptrace.target.error", err.Error()),
	))
	return nil
}
