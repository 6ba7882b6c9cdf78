// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import "fmt"

// FailureMessage is the message of every [Result] whose engine status is nonzero.
const FailureMessage = "execute traceroute failed."

// AbortedMessage is the message of a [Result] for a run that never acquired the gate.
const AbortedMessage = "traceroute aborted before start."

// Status codes produced by the service itself rather than forwarded from an engine.
const (
	// CodeSuccess is the engine status of a successful run.
	CodeSuccess = 0
	// CodeEngineFault is reported when the engine could not complete, e.g. it panicked
	// or its executable could not be started.
	CodeEngineFault = -3
	// CodeAborted is reported when the gate could not be acquired, so no run took place.
	CodeAborted = -4
)

// Result is the outcome of one traceroute run.
type Result struct {
	// Code is the engine status. 0 is success, everything else is an
	// engine specific failure code.
	Code int `json:"code" yaml:"code"`
	// Message is the accumulated engine output on success or
	// [FailureMessage] on failure.
	Message string `json:"message" yaml:"message"`
}

// Succeeded reports whether the run finished with status 0.
func (r Result) Succeeded() bool {
	return r.Code == CodeSuccess
}

// Err returns an [*EngineFailure] for failed runs and nil otherwise.
func (r Result) Err() error {
	if r.Succeeded() {
		return nil
	}
	return &EngineFailure{Code: r.Code, Message: r.Message}
}

func (r Result) String() string {
	if r.Succeeded() {
		return fmt.Sprintf("traceroute succeeded (%d bytes of output)", len(r.Message))
	}
	return fmt.Sprintf("traceroute failed with code %d: %s", r.Code, r.Message)
}

// EngineFailure is the single failure kind of this package: the engine returned
// a nonzero status.
type EngineFailure struct {
	Code    int
	Message string
}

func (e *EngineFailure) Error() string {
	return fmt.Sprintf("engine failure (code %d): %s", e.Code, e.Message)
}
