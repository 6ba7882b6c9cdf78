// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/telekom/tracerelay/internal/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sys/unix"
)

var (
	_ Tracer = (*tcpClient)(nil)
	_ prober = (*tcpClient)(nil)
)

type tcpClient struct {
	dialTCP         func(ctx context.Context, addr net.Addr, port, ttl int, timeout time.Duration) (tcpConn, error)
	newICMPListener func(port int) (icmpListener, error)
	lookupName      func(ctx context.Context, addr net.Addr) string
}

// newTCPClient creates a new TCP client for performing traceroutes.
func newTCPClient() *tcpClient {
	return &tcpClient{
		dialTCP:         dialTCP,
		newICMPListener: newRawListener,
		lookupName:      resolveName,
	}
}

// Trace probes all TTLs of target and hands the hops to emit in TTL order.
func (c *tcpClient) Trace(ctx context.Context, target Target, opts Options, emit func(Hop)) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer("tcptrace.tcpClient")
	ctx, sp := tracer.Start(ctx, "Trace", trace.WithAttributes(
		attribute.Stringer("tcptrace.target", target),
		attribute.Int("tcptrace.options.max_hops", opts.MaxHops),
		attribute.Stringer("tcptrace.options.timeout", opts.Timeout),
	))
	defer sp.End()
	log := logger.FromContext(ctx).With("target", target.String())

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	hops := make(chan Hop, opts.MaxHops)
	target.hopChan = hops
	h := &hopper{
		target:     &target,
		client:     c,
		otelTracer: tracer,
		opts:       opts,
	}
	h.run(probeCtx)
	go func() {
		h.wg.Wait()
		close(hops)
	}()

	seq := newSequencer(func(hop Hop) {
		log.DebugContext(ctx, "Hop", "ttl", hop.TTL, "addr", hop.Addr, "latency", hop.Latency, "reached", hop.Reached)
		emit(hop)
	})
	for hop := range hops {
		seq.add(hop)
		if seq.reached() {
			cancel()
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	sp.SetAttributes(attribute.Bool("tcptrace.target.reached", seq.reached()))
	return h.err()
}

// probe sends a single probe with the TTL of target.
func (c *tcpClient) probe(ctx context.Context, target Target, opts Options) error {
	span := trace.SpanFromContext(ctx)
	log := logger.FromContext(ctx)

	targetAddr, err := target.ToAddr()
	if err != nil {
		return wrapError(ctx, err, "failed to resolve target %s", target)
	}

	port := randomPort()
	il, err := c.newICMPListener(port)
	if err != nil {
		return wrapError(ctx, err, "failed to create ICMP listener")
	}
	defer func() { _ = il.Close() }()

	start := time.Now()
	conn, err := c.dialTCP(ctx, targetAddr, port, target.hopTTL, opts.Timeout)
	defer func() { _ = conn.Close() }()

	// Happiest path: the handshake completed or the target reset the
	// connection, either way the probe arrived at the target.
	if err == nil || errors.Is(err, unix.ECONNREFUSED) {
		hop := c.newHop(ctx, target.hopTTL, targetAddr, time.Since(start), opts)
		hop.Reached = true
		span.AddEvent("Target reached", trace.WithAttributes(
			attribute.Stringer("tcptrace.target.hop", hop),
		))
		target.hopChan <- hop
		return nil
	}

	// Unexpected error: the dial failed for another reason
	// than the probe expiring on the way.
	if rErr := recordTCPError(ctx, err); rErr != nil {
		return rErr
	}

	readCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	packet, err := il.Read(readCtx)
	switch {
	// Unexpected error: we failed to read an ICMP message
	// and it's not because of capabilities/exceeded timeout.
	case err != nil && !isTracerouteError(err):
		return wrapError(ctx, err, "failed to read ICMP message")

	// User error: we don't have the necessary capabilities
	// to open a raw socket for reading ICMP messages.
	case errors.Is(err, errICMPNotAvailable):
		return wrapError(ctx, err, "ICMP not available for reading")

	// Timeout: no router answered the probe in time.
	case errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.DebugContext(ctx, "No ICMP answer received", "ttl", target.hopTTL)
		target.hopChan <- Hop{TTL: target.hopTTL, Addr: noAnswer}
		return nil

	// A router answered that the TTL of the probe expired.
	default:
		hop := c.newHop(ctx, target.hopTTL, packet.remoteAddr, time.Since(start), opts)
		hop.Reached = packet.reached
		span.AddEvent("ICMP message received", trace.WithAttributes(
			attribute.Stringer("tcptrace.target.hop", hop),
		))
		target.hopChan <- hop
		return nil
	}
}

func (c *tcpClient) newHop(ctx context.Context, ttl int, addr net.Addr, latency time.Duration, opts Options) Hop {
	hop := Hop{TTL: ttl, Addr: hopAddr(addr), Latency: latency}
	if !opts.NoResolve && c.lookupName != nil {
		hop.Name = c.lookupName(ctx, addr)
	}
	return hop
}

// tcpConn represents a TCP connection with a specific port.
type tcpConn struct {
	conn net.Conn
	port int
}

// dialTCP dials addr from the given local port with the specified TTL.
func dialTCP(ctx context.Context, addr net.Addr, port, ttl int, timeout time.Duration) (tcpConn, error) {
	dialer := net.Dialer{
		LocalAddr: &net.TCPAddr{Port: port},
		Timeout:   timeout,
		ControlContext: func(_ context.Context, _, _ string, c syscall.RawConn) error {
			var opErr error
			if err := c.Control(func(fd uintptr) {
				opErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl) // #nosec G115 // The net package is safe to use
			}); err != nil {
				return err
			}
			return opErr
		},
	}

	conn, err := dialer.DialContext(ctx, "tcp4", addr.String())
	return tcpConn{conn: conn, port: port}, err
}

// Close closes the TCP connection.
func (tc *tcpConn) Close() error {
	if tc.conn != nil {
		return tc.conn.Close()
	}
	return nil
}
