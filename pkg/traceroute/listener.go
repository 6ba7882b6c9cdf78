// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

var (
	_ Listener      = (*SimpleListener)(nil)
	_ StartListener = (*SimpleListener)(nil)
)

// Listener receives the notifications of traceroute runs.
// All methods are called on the service's delivery goroutine.
type Listener interface {
	// OnSuccess is called once when a run finished with status 0.
	OnSuccess(res Result)
	// OnUpdate is called for every piece of text the engine reports while running.
	OnUpdate(text string)
	// OnFailed is called once when a run finished with a nonzero status, and
	// once for a call that gave up waiting for the gate ([CodeAborted]).
	OnFailed(code int, reason string)
}

// StartListener is implemented by listeners that also want to know when a
// run acquired the gate. OnStart is delivered before the first update of the run.
type StartListener interface {
	OnStart(args []string)
}

// SimpleListener is a [Listener] assembled from independent handlers.
// Handlers that are not set are no-ops.
type SimpleListener struct {
	onStart   func([]string)
	onSuccess func(Result)
	onUpdate  func(string)
	onFailed  func(int, string)
}

// Start sets the handler called when a run begins.
func (l *SimpleListener) Start(fn func(args []string)) {
	l.onStart = fn
}

// Success sets the handler for successful runs.
func (l *SimpleListener) Success(fn func(res Result)) {
	l.onSuccess = fn
}

// Update sets the handler for progress text.
func (l *SimpleListener) Update(fn func(text string)) {
	l.onUpdate = fn
}

// Failed sets the handler for failed runs.
func (l *SimpleListener) Failed(fn func(code int, reason string)) {
	l.onFailed = fn
}

func (l *SimpleListener) OnStart(args []string) {
	if l.onStart != nil {
		l.onStart(args)
	}
}

func (l *SimpleListener) OnSuccess(res Result) {
	if l.onSuccess != nil {
		l.onSuccess(res)
	}
}

func (l *SimpleListener) OnUpdate(text string) {
	if l.onUpdate != nil {
		l.onUpdate(text)
	}
}

func (l *SimpleListener) OnFailed(code int, reason string) {
	if l.onFailed != nil {
		l.onFailed(code, reason)
	}
}
