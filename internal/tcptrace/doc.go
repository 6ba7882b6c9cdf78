// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package tcptrace implements a TCP traceroute without an external binary.
//
// A [Tracer] dials the target once per TTL with IP_TTL set on the socket and
// reads the ICMP time-exceeded and destination-unreachable messages routers
// send back for the expired probes. A completed handshake or a reset from
// the target marks the destination as reached.
//
// All TTLs are probed concurrently, but hops are handed to the caller
// strictly in TTL order: a hop is emitted as soon as every hop in front of it
// is known. Hops without an answer are reported with the address "*".
// Emission stops at the first hop that reached the target.
//
// Reading ICMP requires a raw socket and thus NET_RAW capabilities. Without
// them every probe that does not reach the target fails.
//
// Typical usage:
//
//	t := tcptrace.NewTracer()
//	opts := tcptrace.Options{MaxHops: 30, Timeout: 2 * time.Second}
//	err := t.Trace(ctx, tcptrace.Target{Address: "192.0.2.1", Port: 80}, opts, func(h tcptrace.Hop) {
//		fmt.Println(h)
//	})
package tcptrace
