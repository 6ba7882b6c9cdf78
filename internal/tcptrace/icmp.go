// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"net"
)

// icmpListener is an interface for reading ICMP messages.
//
//go:generate go tool moq -out icmp_moq.go . icmpListener
type icmpListener interface {
	// Read returns the next ICMP message for the listener's probe.
	// It returns [context.DeadlineExceeded] if none arrives before ctx expires.
	Read(ctx context.Context) (icmpPacket, error)
	Close() error
}

// icmpPacket represents a received ICMP packet.
type icmpPacket struct {
	// remoteAddr is the address of the device (typically a router)
	// that sent the ICMP message in response to our probe.
	remoteAddr net.Addr
	// port is the source port of the TCP segment quoted in the ICMP
	// message, i.e. the local port of the probe.
	port int
	// reached indicates that the target itself answered with
	// a port unreachable message.
	reached bool
}

// icmpUnreachablePort is the ICMP code for Destination Unreachable - "Port Unreachable" messages.
// For more information, see:
// https://www.iana.org/assignments/icmp-parameters/icmp-parameters.xhtml#icmp-parameters-codes-3
const icmpUnreachablePort = 3

// mtuSize is the size of the buffer ICMP messages are read into.
const mtuSize = 1500
