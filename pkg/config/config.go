// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package config holds the startup configuration of tracerelay.
package config

import (
	"github.com/telekom/tracerelay/internal/engine"
	"github.com/telekom/tracerelay/pkg/api"
	"github.com/telekom/tracerelay/pkg/telemetry"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

type Config struct {
	// Engine selects the traceroute engine
	Engine engine.Config `json:"engine" yaml:"engine" mapstructure:"engine"`
	// Service is the configuration of the traceroute service
	Service traceroute.Config `json:"service" yaml:"service" mapstructure:"service"`
	// Api is the configuration for the api server
	Api api.Config `json:"api" yaml:"api" mapstructure:"api"` //nolint:revive,stylecheck // config key
	// Telemetry is the configuration for the telemetry
	Telemetry telemetry.Config `json:"telemetry" yaml:"telemetry" mapstructure:"telemetry"`
}

// Default returns the configuration used for unset keys.
func Default() Config {
	return Config{
		Engine:    engine.DefaultConfig(),
		Service:   traceroute.Config{Program: traceroute.DefaultProgram},
		Api:       api.Config{ListeningAddress: api.DefaultAddress},
		Telemetry: telemetry.Config{Exporter: telemetry.NOOP},
	}
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}
