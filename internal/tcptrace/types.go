// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package tcptrace

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/telekom/tracerelay/internal/helper"
)

const (
	// maxTTL is the largest value IP_TTL accepts.
	maxTTL = 255
	// noAnswer is the address of a hop that did not answer in time.
	noAnswer = "*"
)

// Options contains the configuration of a single trace.
type Options struct {
	// Retry is the retry configuration for failed probes.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
	// MaxHops is the maximum TTL to probe.
	MaxHops int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Timeout is the time to wait for the answer to each probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// NoResolve disables reverse DNS lookups of hop addresses.
	NoResolve bool `json:"noResolve" yaml:"noResolve" mapstructure:"noResolve"`
}

// Validate checks that the options can be used for a trace.
func (o Options) Validate() error {
	var err error
	if o.MaxHops < 1 || o.MaxHops > maxTTL {
		err = errors.Join(err, fmt.Errorf("max hops %d must be between 1 and %d", o.MaxHops, maxTTL))
	}
	if o.Timeout <= 0 {
		err = errors.Join(err, fmt.Errorf("timeout %v must be positive", o.Timeout))
	}
	err = errors.Join(err, o.Retry.Validate())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Target is the destination of a trace.
type Target struct {
	// Address is the IPv4 address or hostname to trace to.
	Address string `json:"address" yaml:"address" mapstructure:"address"`
	// Port is the TCP port the probes are sent to.
	Port int `json:"port" yaml:"port" mapstructure:"port"`

	// hopTTL is the TTL of a single probe.
	hopTTL int
	// hopChan receives the hop of a probe.
	hopChan chan<- Hop
}

// withHopTTL returns a copy of the target for the probe with the given TTL.
func (t Target) withHopTTL(ttl int) Target {
	t.hopTTL = ttl
	return t
}

func (t Target) String() string {
	return net.JoinHostPort(t.Address, strconv.Itoa(t.Port))
}

// Validate checks that the target can be traced.
func (t Target) Validate() error {
	if strings.TrimSpace(t.Address) == "" {
		return fmt.Errorf("%w: address cannot be empty", ErrInvalidTarget)
	}
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("%w: port %d must be between 1 and 65535", ErrInvalidTarget, t.Port)
	}
	return nil
}

// ToAddr resolves the target to an IPv4 TCP address.
func (t Target) ToAddr() (net.Addr, error) {
	return net.ResolveTCPAddr("tcp4", t.String())
}

// Hop is the answer to the probe with a given TTL.
type Hop struct {
	// TTL of the probe.
	TTL int `json:"ttl" yaml:"ttl"`
	// Addr is the IP address that answered or "*" if nobody did.
	Addr string `json:"addr" yaml:"addr"`
	// Name is the reverse DNS name of Addr, if known.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Latency is the time until the answer was received.
	Latency time.Duration `json:"latency" yaml:"latency"`
	// Reached is true if the answer came from the target.
	Reached bool `json:"reached" yaml:"reached"`
}

// Answered reports whether anyone answered the probe.
func (h Hop) Answered() bool {
	return h.Addr != "" && h.Addr != noAnswer
}

// String formats the hop as a traceroute output line without trailing newline.
func (h Hop) String() string {
	if !h.Answered() {
		return fmt.Sprintf("%2d  %s", h.TTL, noAnswer)
	}

	const maxNameLength = 63
	ms := float64(h.Latency.Microseconds()) / 1000
	name := strings.TrimSuffix(h.Name, ".")
	if name == "" || len(name) > maxNameLength {
		return fmt.Sprintf("%2d  %s  %.3f ms", h.TTL, h.Addr, ms)
	}
	return fmt.Sprintf("%2d  %s (%s)  %.3f ms", h.TTL, name, h.Addr, ms)
}
