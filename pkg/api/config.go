// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"errors"
	"fmt"
	"net"
)

// DefaultAddress is the listening address used when none is configured.
const DefaultAddress = ":8080"

// Config is the configuration of the api server.
type Config struct {
	ListeningAddress string    `json:"address" yaml:"address" mapstructure:"address"`
	Tls              TLSConfig `json:"tls" yaml:"tls" mapstructure:"tls"` //nolint:revive,stylecheck // config key
}

// TLSConfig holds the certificate of the api server.
type TLSConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	CertPath string `json:"certPath" yaml:"certPath" mapstructure:"certPath"`
	KeyPath  string `json:"keyPath" yaml:"keyPath" mapstructure:"keyPath"`
}

// Validate checks the listening address and the tls settings.
func (c *Config) Validate() (err error) {
	if _, _, sErr := net.SplitHostPort(c.ListeningAddress); sErr != nil {
		err = errors.Join(err, fmt.Errorf("%w %q: %w", ErrInvalidAddress, c.ListeningAddress, sErr))
	}
	if c.Tls.Enabled && (c.Tls.CertPath == "" || c.Tls.KeyPath == "") {
		err = errors.Join(err, ErrMissingCertificate)
	}
	return err
}
