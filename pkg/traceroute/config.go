// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"strings"
	"time"
)

// DefaultProgram is the program name prepended to a bare hostname by [Service.Run].
const DefaultProgram = "traceroute"

// Config is the configuration of a [Service].
type Config struct {
	// Program is the first argument passed to the engine for runs started from a hostname.
	Program string `json:"program" yaml:"program" mapstructure:"program"`
	// AcquireTimeout bounds how long a run waits for the previous one to finish.
	// 0 waits without limit.
	AcquireTimeout time.Duration `json:"acquireTimeout" yaml:"acquireTimeout" mapstructure:"acquireTimeout"`
}

// Validate checks the configuration. An empty Program is valid and means [DefaultProgram].
func (c *Config) Validate() (err error) {
	if c.Program != "" && strings.TrimSpace(c.Program) == "" {
		err = errors.Join(err, ErrInvalidProgram)
	}
	if c.AcquireTimeout < 0 {
		err = errors.Join(err, ErrInvalidAcquireTimeout)
	}
	return err
}

func (c *Config) program() string {
	if c.Program == "" {
		return DefaultProgram
	}
	return c.Program
}
