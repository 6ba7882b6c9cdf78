// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import "errors"

var (
	// ErrGateTimeout is returned when a run waited longer than the configured
	// acquisition timeout for the previous run to finish.
	ErrGateTimeout = errors.New("timed out waiting for running traceroute")
	// ErrLoopClosed is returned when posting to or running a main loop that has stopped.
	ErrLoopClosed = errors.New("main loop is closed")
	// ErrLoopRunning is returned when a main loop is run a second time concurrently.
	ErrLoopRunning = errors.New("main loop is already running")
	// ErrInvalidProgram is returned when the configured program name is empty.
	ErrInvalidProgram = errors.New("program name must not be empty")
	// ErrInvalidAcquireTimeout is returned when the configured acquisition timeout is negative.
	ErrInvalidAcquireTimeout = errors.New("acquire timeout must not be negative")
)
