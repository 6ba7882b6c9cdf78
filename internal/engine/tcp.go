// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/spf13/pflag"
	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/internal/tcptrace"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

var _ traceroute.Engine = (*TCP)(nil)

// TCP runs the built-in TCP traceroute. It understands a subset of the
// traceroute command line: -m/--max-hops, -w/--wait (seconds),
// -p/--port, -q/--retries and -n/--numeric, followed by the host.
type TCP struct {
	tracer   tcptrace.Tracer
	defaults TCPConfig
	lookupIP func(ctx context.Context, network, host string) ([]net.IP, error)
}

// NewTCP returns a TCP engine running tracer with the given defaults.
func NewTCP(tracer tcptrace.Tracer, defaults TCPConfig) *TCP {
	return &TCP{
		tracer:   tracer,
		defaults: defaults,
		lookupIP: net.DefaultResolver.LookupIP,
	}
}

// tcpRun holds the parsed command line of a run.
type tcpRun struct {
	host string
	port int
	opts tcptrace.Options
}

// parseArgs parses a traceroute style command line. args[0] is the program name.
func (e *TCP) parseArgs(args []string) (tcpRun, error) {
	if len(args) == 0 {
		return tcpRun{}, fmt.Errorf("missing program name")
	}

	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SetInterspersed(true)
	maxHops := fs.IntP("max-hops", "m", e.defaults.MaxHops, "maximum number of hops")
	wait := fs.Float64P("wait", "w", e.defaults.Timeout.Seconds(), "seconds to wait for a response")
	port := fs.IntP("port", "p", e.defaults.Port, "destination port")
	retries := fs.IntP("retries", "q", e.defaults.Retry.Count, "retries of failed probes")
	numeric := fs.BoolP("numeric", "n", false, "do not resolve hop addresses")

	if err := fs.Parse(args[1:]); err != nil {
		return tcpRun{}, err
	}
	if fs.NArg() != 1 {
		return tcpRun{}, fmt.Errorf("expected exactly one host, got %d arguments", fs.NArg())
	}
	if *port < 1 || *port > 65535 {
		return tcpRun{}, fmt.Errorf("port %d must be between 1 and 65535", *port)
	}

	run := tcpRun{
		host: fs.Arg(0),
		port: *port,
		opts: tcptrace.Options{
			Retry:     e.defaults.Retry,
			MaxHops:   *maxHops,
			Timeout:   time.Duration(*wait * float64(time.Second)),
			NoResolve: *numeric,
		},
	}
	run.opts.Retry.Count = *retries
	if err := run.opts.Validate(); err != nil {
		return tcpRun{}, err
	}
	return run, nil
}

// Execute traces the host given in args and reports a header line
// followed by one line per hop.
func (e *TCP) Execute(ctx context.Context, args []string, sink traceroute.ProgressSink) int {
	log := logger.FromContext(ctx)

	run, err := e.parseArgs(args)
	if err != nil {
		log.ErrorContext(ctx, "Invalid traceroute arguments", "error", err)
		return codeUsage
	}

	ip, err := e.resolve(ctx, run.host)
	if err != nil {
		log.ErrorContext(ctx, "Cannot resolve traceroute host", "host", run.host, "error", err)
		return codeUsage
	}

	sink.AppendProgress(fmt.Sprintf("traceroute to %s (%s), %d hops max\n", run.host, ip, run.opts.MaxHops))
	target := tcptrace.Target{Address: ip.String(), Port: run.port}
	err = e.tracer.Trace(ctx, target, run.opts, func(h tcptrace.Hop) {
		sink.AppendProgress(h.String() + "\n")
	})
	if err != nil {
		log.ErrorContext(ctx, "TCP traceroute failed", "target", target.String(), "error", err)
		return codeProbeError
	}
	return traceroute.CodeSuccess
}

// resolve returns the first IPv4 address of host.
func (e *TCP) resolve(ctx context.Context, host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if ip.To4() == nil {
			return nil, fmt.Errorf("%s is not an IPv4 address", host)
		}
		return ip.To4(), nil
	}

	ips, err := e.lookupIP(ctx, "ip4", host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no IPv4 address found for %s", host)
	}
	return ips[0], nil
}
