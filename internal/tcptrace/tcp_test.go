// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sys/unix"
)

func TestTCPClient_probe(t *testing.T) {
	tgt := Target{Address: "1.2.3.4", Port: 8080}.withHopTTL(3)

	tests := []struct {
		name       string
		dialErr    error
		icmpPacket icmpPacket
		icmpErr    error
		wantErr    error
		wantHop    Hop
		wantNoRead bool
	}{
		{
			name:       "tcp success",
			wantHop:    Hop{TTL: 3, Addr: "1.2.3.4", Reached: true},
			wantNoRead: true,
		},
		{
			name:       "connection refused by target",
			dialErr:    unix.ECONNREFUSED,
			wantHop:    Hop{TTL: 3, Addr: "1.2.3.4", Reached: true},
			wantNoRead: true,
		},
		{
			name:       "unexpected dial error",
			dialErr:    errors.New("network failure"),
			wantErr:    errors.New("network failure"),
			wantNoRead: true,
		},
		{
			name:    "ttl expired without answer",
			dialErr: unix.EHOSTUNREACH,
			icmpErr: context.DeadlineExceeded,
			wantHop: Hop{TTL: 3, Addr: "*"},
		},
		{
			name:    "dial timeout then router answer",
			dialErr: context.DeadlineExceeded,
			icmpPacket: icmpPacket{
				remoteAddr: newAddr(t, "9.8.7.6"),
			},
			wantHop: Hop{TTL: 3, Addr: "9.8.7.6"},
		},
		{
			name:    "icmp not available",
			dialErr: unix.EHOSTUNREACH,
			icmpErr: errICMPNotAvailable,
			wantErr: errICMPNotAvailable,
		},
		{
			name:       "intermediate router",
			dialErr:    unix.EHOSTUNREACH,
			icmpPacket: icmpPacket{remoteAddr: newAddr(t, "9.8.7.6")},
			wantHop:    Hop{TTL: 3, Addr: "9.8.7.6"},
		},
		{
			name:       "port unreachable from target",
			dialErr:    unix.EHOSTUNREACH,
			icmpPacket: icmpPacket{remoteAddr: newAddr(t, "1.2.3.4"), reached: true},
			wantHop:    Hop{TTL: 3, Addr: "1.2.3.4", Reached: true},
		},
		{
			name:    "icmp read error",
			dialErr: unix.EHOSTUNREACH,
			icmpErr: errors.New("icmp read error"),
			wantErr: errors.New("icmp read error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listener := &icmpListenerMock{
				ReadFunc: func(ctx context.Context) (icmpPacket, error) {
					_, ok := ctx.Deadline()
					assert.True(t, ok, "ICMP reads must have a deadline")
					return tt.icmpPacket, tt.icmpErr
				},
				CloseFunc: func() error { return nil },
			}
			var listenPort int
			client := &tcpClient{
				dialTCP: func(_ context.Context, addr net.Addr, port, ttl int, timeout time.Duration) (tcpConn, error) {
					assert.Equal(t, "1.2.3.4:8080", addr.String())
					assert.Equal(t, listenPort, port, "probe must be sent from the listened port")
					assert.Equal(t, 3, ttl)
					assert.Equal(t, time.Millisecond, timeout)
					return tcpConn{port: port}, tt.dialErr
				},
				newICMPListener: func(port int) (icmpListener, error) {
					listenPort = port
					return listener, nil
				},
			}

			hops := make(chan Hop, 1)
			target := tgt
			target.hopChan = hops
			err := client.probe(t.Context(), target, Options{MaxHops: 3, Timeout: time.Millisecond, NoResolve: true})

			assert.Len(t, listener.CloseCalls(), 1, "listener must be closed")
			if tt.wantNoRead {
				assert.Empty(t, listener.ReadCalls())
			}
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr.Error())
				assert.Empty(t, hops)
				return
			}
			require.NoError(t, err)
			require.Len(t, hops, 1)
			hop := <-hops
			hop.Latency = 0
			assert.Equal(t, tt.wantHop, hop)
		})
	}
}

func TestTCPClient_probe_listenerError(t *testing.T) {
	client := &tcpClient{
		dialTCP: func(context.Context, net.Addr, int, int, time.Duration) (tcpConn, error) {
			require.FailNow(t, "must not dial without listener")
			return tcpConn{}, nil
		},
		newICMPListener: func(int) (icmpListener, error) {
			return nil, unix.EMFILE
		},
	}

	err := client.probe(t.Context(), Target{Address: "1.2.3.4", Port: 80}.withHopTTL(1), Options{Timeout: time.Millisecond})
	assert.ErrorIs(t, err, unix.EMFILE)
}

func TestTCPClient_probe_resolvesNames(t *testing.T) {
	client := &tcpClient{
		dialTCP: func(_ context.Context, _ net.Addr, port, _ int, _ time.Duration) (tcpConn, error) {
			return tcpConn{port: port}, nil
		},
		newICMPListener: func(int) (icmpListener, error) {
			return &icmpListenerMock{CloseFunc: func() error { return nil }}, nil
		},
		lookupName: func(_ context.Context, addr net.Addr) string {
			return "host-" + hopAddr(addr) + "."
		},
	}

	for _, noResolve := range []bool{false, true} {
		hops := make(chan Hop, 1)
		target := Target{Address: "1.2.3.4", Port: 80, hopChan: hops}.withHopTTL(1)
		require.NoError(t, client.probe(t.Context(), target, Options{Timeout: time.Millisecond, NoResolve: noResolve}))

		hop := <-hops
		if noResolve {
			assert.Empty(t, hop.Name)
			continue
		}
		assert.Equal(t, "host-1.2.3.4.", hop.Name)
	}
}

// fakeNetwork simulates a path where the target answers from targetTTL on
// and every router before it sends a time exceeded message.
type fakeNetwork struct {
	targetTTL int
	slowTTL   int
	silentTTL int
	icmpErr   error

	mu    sync.Mutex
	ports map[int]int
}

func (n *fakeNetwork) client() *tcpClient {
	n.ports = map[int]int{}
	return &tcpClient{
		dialTCP: func(_ context.Context, _ net.Addr, port, ttl int, _ time.Duration) (tcpConn, error) {
			n.mu.Lock()
			n.ports[port] = ttl
			n.mu.Unlock()
			if ttl == n.slowTTL {
				time.Sleep(20 * time.Millisecond)
			}
			if ttl >= n.targetTTL {
				return tcpConn{port: port}, nil
			}
			return tcpConn{port: port}, unix.EHOSTUNREACH
		},
		newICMPListener: func(port int) (icmpListener, error) {
			return &icmpListenerMock{
				ReadFunc: func(context.Context) (icmpPacket, error) {
					if n.icmpErr != nil {
						return icmpPacket{}, n.icmpErr
					}
					n.mu.Lock()
					ttl := n.ports[port]
					n.mu.Unlock()
					if ttl == n.silentTTL {
						return icmpPacket{}, context.DeadlineExceeded
					}
					return icmpPacket{
						remoteAddr: &net.IPAddr{IP: net.IPv4(10, 0, 0, byte(ttl))},
						port:       port,
					}, nil
				},
				CloseFunc: func() error { return nil },
			}, nil
		},
	}
}

func TestTCPClient_Trace(t *testing.T) {
	tests := []struct {
		name        string
		network     *fakeNetwork
		maxHops     int
		wantAddrs   []string
		wantReached bool
		wantErr     error
	}{
		{
			name:        "target reached",
			network:     &fakeNetwork{targetTTL: 3},
			maxHops:     5,
			wantAddrs:   []string{"10.0.0.1", "10.0.0.2", "4.3.2.1"},
			wantReached: true,
		},
		{
			name:        "out of order answers are emitted in order",
			network:     &fakeNetwork{targetTTL: 4, slowTTL: 1},
			maxHops:     6,
			wantAddrs:   []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "4.3.2.1"},
			wantReached: true,
		},
		{
			name:        "silent router",
			network:     &fakeNetwork{targetTTL: 3, silentTTL: 2},
			maxHops:     5,
			wantAddrs:   []string{"10.0.0.1", "*", "4.3.2.1"},
			wantReached: true,
		},
		{
			name:      "target not reached within max hops",
			network:   &fakeNetwork{targetTTL: 10},
			maxHops:   3,
			wantAddrs: []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
		},
		{
			name:      "icmp not available",
			network:   &fakeNetwork{targetTTL: 10, icmpErr: errICMPNotAvailable},
			maxHops:   2,
			wantAddrs: []string{"*", "*"},
			wantErr:   errICMPNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := tt.network.client()
			ctx, span := noop.NewTracerProvider().Tracer("").Start(t.Context(), "trace")
			defer span.End()

			var got []Hop
			err := client.Trace(ctx, Target{Address: "4.3.2.1", Port: 80}, Options{
				MaxHops:   tt.maxHops,
				Timeout:   time.Millisecond,
				NoResolve: true,
			}, func(h Hop) { got = append(got, h) })

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			var addrs []string
			for i, h := range got {
				assert.Equal(t, i+1, h.TTL, "hops must be emitted in TTL order")
				addrs = append(addrs, h.Addr)
			}
			assert.Equal(t, tt.wantAddrs, addrs)
			assert.Equal(t, tt.wantReached, got[len(got)-1].Reached)
		})
	}
}

func TestTCPClient_Trace_invalid(t *testing.T) {
	client := &tcpClient{}
	emit := func(Hop) { t.Fatal("must not emit") }

	err := client.Trace(t.Context(), Target{Address: "", Port: 80}, Options{MaxHops: 1, Timeout: time.Second}, emit)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	err = client.Trace(t.Context(), Target{Address: "1.2.3.4", Port: 80}, Options{MaxHops: 0, Timeout: time.Second}, emit)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestTCPClient_Trace_canceled(t *testing.T) {
	network := &fakeNetwork{targetTTL: 30}
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := network.client().Trace(ctx, Target{Address: "4.3.2.1", Port: 80}, Options{MaxHops: 3, Timeout: time.Millisecond, NoResolve: true}, func(Hop) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func newAddr(t testing.TB, ip string) net.Addr {
	t.Helper()
	addr := &net.TCPAddr{IP: net.ParseIP(ip)}
	require.NotNil(t, addr.IP, "failed to parse IP address: %s", ip)
	return addr
}
