// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/telekom/tracerelay/internal/helper"
	"github.com/telekom/tracerelay/internal/tcptrace"
)

// Kind selects the traceroute engine.
type Kind string

const (
	// KindExec runs the traceroute binary of the system.
	KindExec Kind = "exec"
	// KindTCP runs the built-in TCP traceroute.
	KindTCP Kind = "tcp"
)

func (k Kind) String() string {
	return string(k)
}

// IsValid reports whether k names a known engine.
func (k Kind) IsValid() bool {
	return slices.Contains([]Kind{KindExec, KindTCP}, k)
}

const (
	defaultPort    = 80
	defaultMaxHops = 30
	defaultTimeout = 3 * time.Second
)

// Config selects and configures the engine.
type Config struct {
	// Kind is the engine to use.
	Kind Kind `json:"kind" yaml:"kind" mapstructure:"kind"`
	// Binary overrides the executable started by the exec engine.
	// If empty, the first argument of a run is used.
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty" mapstructure:"binary"`
	// TCP holds the defaults of the tcp engine. Arguments of a run override them.
	TCP TCPConfig `json:"tcp" yaml:"tcp" mapstructure:"tcp"`
}

// TCPConfig holds the defaults of the tcp engine.
type TCPConfig struct {
	// Port is the destination port of the probes.
	Port int `json:"port" yaml:"port" mapstructure:"port"`
	// MaxHops is the maximum TTL probed.
	MaxHops int `json:"maxHops" yaml:"maxHops" mapstructure:"maxHops"`
	// Timeout is the time to wait for the answer to each probe.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	// Retry configures retries of failed probes.
	Retry helper.RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Kind: KindExec,
		TCP: TCPConfig{
			Port:    defaultPort,
			MaxHops: defaultMaxHops,
			Timeout: defaultTimeout,
		},
	}
}

// Validate checks the engine configuration.
func (c *Config) Validate() error {
	var err error
	if !c.Kind.IsValid() {
		err = errors.Join(err, fmt.Errorf("%w: %q", ErrUnknownKind, c.Kind))
	}
	if c.Binary != "" && strings.TrimSpace(c.Binary) == "" {
		err = errors.Join(err, errors.New("engine binary must not be blank"))
	}
	if c.Kind == KindTCP {
		if c.TCP.Port < 1 || c.TCP.Port > 65535 {
			err = errors.Join(err, fmt.Errorf("tcp port %d must be between 1 and 65535", c.TCP.Port))
		}
		if vErr := c.TCP.options().Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	return err
}

func (c TCPConfig) options() tcptrace.Options {
	return tcptrace.Options{
		Retry:   c.Retry,
		MaxHops: c.MaxHops,
		Timeout: c.Timeout,
	}
}
