// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import "context"

// ProgressSink receives the output of a running engine.
type ProgressSink interface {
	// AppendProgress reports a piece of output. It may be called from any goroutine.
	AppendProgress(text string)
}

// Engine performs the actual traceroute.
//
//go:generate go tool moq -out engine_moq.go . Engine
type Engine interface {
	// Execute runs a traceroute for the command line style args
	// (args[0] is the program name) and reports its output to sink
	// before returning. It returns 0 on success and an engine
	// specific nonzero status on failure.
	Execute(ctx context.Context, args []string, sink ProgressSink) int
}

// EngineFunc adapts an ordinary function to the [Engine] interface.
type EngineFunc func(ctx context.Context, args []string, sink ProgressSink) int

// Execute calls f(ctx, args, sink).
func (f EngineFunc) Execute(ctx context.Context, args []string, sink ProgressSink) int {
	return f(ctx, args, sink)
}
