// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"strings"

	"github.com/telekom/tracerelay/pkg/traceroute"
)

// State is the state of the most recent traceroute run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Output is the body of GET /v1/traceroute/output.
type Output struct {
	State  State              `json:"state"`
	Output string             `json:"output"`
	Result *traceroute.Result `json:"result,omitempty"`
}

// view collects the notifications of the service.
// It is only touched on the main loop goroutine.
type view struct {
	output  strings.Builder
	last    *traceroute.Result
	running bool
}

// register installs the view as listener of svc.
func (v *view) register(svc *traceroute.Service) {
	svc.SetListenerFunc(func(l *traceroute.SimpleListener) {
		l.Start(v.onStart)
		l.Update(v.onUpdate)
		l.Success(v.onSuccess)
		l.Failed(v.onFailed)
	})
}

func (v *view) onStart([]string) {
	v.output.Reset()
	v.running = true
}

func (v *view) onUpdate(text string) {
	v.output.WriteString(text)
}

func (v *view) onSuccess(res traceroute.Result) {
	v.finish(res)
}

// onFailed ignores aborted calls: they never ran, so they neither end
// the current run nor replace the outcome of the previous one.
func (v *view) onFailed(code int, reason string) {
	if code == traceroute.CodeAborted {
		return
	}
	v.finish(traceroute.Result{Code: code, Message: reason})
}

func (v *view) finish(res traceroute.Result) {
	v.last = &res
	v.running = false
}

func (v *view) snapshot() Output {
	switch {
	case v.running:
		return Output{State: StateRunning, Output: v.output.String()}
	case v.last == nil:
		return Output{State: StateIdle}
	}

	res := *v.last
	state := StateSucceeded
	if !res.Succeeded() {
		state = StateFailed
	}
	return Output{State: state, Output: v.output.String(), Result: &res}
}
