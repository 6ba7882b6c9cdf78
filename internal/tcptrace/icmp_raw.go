// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"

	"github.com/telekom/tracerelay/internal/logger"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"
)

var _ icmpListener = (*rawListener)(nil)

// rawListener is a listener for ICMP messages over a raw socket.
// It requires NET_RAW capabilities to be created successfully.
type rawListener struct {
	// conn is the ICMP packet connection used to listen for ICMP messages.
	conn *icmp.PacketConn
	// recvPort is the local port of the probe we are interested in.
	recvPort int
	// canICMP indicates whether the listener was successfully created
	// with NET_RAW capabilities, meaning it can read ICMP messages.
	canICMP bool
}

// newRawListener creates a new [rawListener] for the probe sent from wantPort.
// If the socket cannot be opened due to missing permissions, it returns a
// listener whose reads fail with [errICMPNotAvailable] instead of an error.
func newRawListener(wantPort int) (icmpListener, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err == nil {
		return &rawListener{conn: conn, recvPort: wantPort, canICMP: true}, nil
	}

	if errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES) {
		return &rawListener{recvPort: wantPort}, nil
	}

	return nil, fmt.Errorf("failed to create ICMP listener: %w", err)
}

// Read receives ICMP messages until one quotes a probe sent from the
// listener's port or ctx is done.
func (l *rawListener) Read(ctx context.Context) (icmpPacket, error) {
	if !l.canICMP {
		return icmpPacket{}, errICMPNotAvailable
	}
	log := logger.FromContext(ctx)

	for {
		if err := ctx.Err(); err != nil {
			return icmpPacket{}, err
		}

		pkt, err := l.recvPacket(ctx)
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return icmpPacket{}, err
		case err != nil:
			log.DebugContext(ctx, "Ignoring ICMP packet", "error", err)
			continue
		case pkt.port != l.recvPort:
			continue
		}
		return *pkt, nil
	}
}

// recvPacket reads the next ICMP packet from the listener's connection.
func (l *rawListener) recvPacket(ctx context.Context) (*icmpPacket, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil, errors.New("no deadline set for ICMP read")
	}

	if err := l.conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set read deadline: %w", err)
	}

	buf := make([]byte, mtuSize)
	n, src, err := l.conn.ReadFrom(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return nil, context.DeadlineExceeded
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read from ICMP socket: %w", err)
	}

	msg, err := icmp.ParseMessage(ipv4.ICMPTypeTimeExceeded.Protocol(), buf[:n])
	if err != nil {
		return nil, fmt.Errorf("failed to parse ICMP message: %w", err)
	}

	return newICMPPacket(src, msg)
}

// newICMPPacket creates a new ICMP packet from the given ICMP message and source address.
func newICMPPacket(src net.Addr, msg *icmp.Message) (*icmpPacket, error) {
	var quoted []byte
	switch body := msg.Body.(type) {
	case *icmp.TimeExceeded:
		quoted = body.Data
	case *icmp.DstUnreach:
		quoted = body.Data
	default:
		return nil, fmt.Errorf("unexpected ICMP message type: %v", msg.Type)
	}

	// The quoted datagram starts with the IPv4 header of the probe,
	// followed by at least the first 8 bytes of its TCP segment.
	if len(quoted) < ipv4.HeaderLen {
		return nil, fmt.Errorf("quoted datagram too short: %d bytes", len(quoted))
	}
	headerLen := int(quoted[0]&0x0f) * 4
	if headerLen < ipv4.HeaderLen || len(quoted) < headerLen+2 {
		return nil, fmt.Errorf("tcp segment too short: %d bytes", len(quoted)-headerLen)
	}

	srcPort := int(binary.BigEndian.Uint16(quoted[headerLen : headerLen+2]))
	unreachable := msg.Type == ipv4.ICMPTypeDestinationUnreachable

	return &icmpPacket{
		remoteAddr: src,
		port:       srcPort,
		reached:    unreachable && msg.Code == icmpUnreachablePort,
	}, nil
}

// Close closes the ICMP listener connection.
//
// It is safe to call this method even if the listener
// does not have NET_RAW capabilities.
func (l *rawListener) Close() error {
	if l.conn != nil {
		return l.conn.Close()
	}
	return nil
}
