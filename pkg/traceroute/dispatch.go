// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"sync"

	"github.com/telekom/tracerelay/internal/logger"
)

var _ Dispatcher = (*MainLoop)(nil)

// Dispatcher runs notifications on a designated execution context.
type Dispatcher interface {
	// Post schedules fn for execution on the dispatcher's context.
	// It must not run fn on the calling goroutine and must preserve
	// the order of posts. It returns false if fn was rejected.
	Post(fn func()) bool
}

// MainLoop is a [Dispatcher] whose context is the goroutine calling [MainLoop.Run].
// Posted functions are queued without bound, so Post never blocks.
type MainLoop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	running bool
	closed  bool
}

// NewMainLoop creates a loop that accepts posts right away.
// Posted functions run once [MainLoop.Run] is called.
func NewMainLoop() *MainLoop {
	return &MainLoop{wake: make(chan struct{}, 1)}
}

// Post queues fn for the loop goroutine.
// It returns false if fn is nil or the loop has already stopped.
func (l *MainLoop) Post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits until it ran on the loop or ctx is done.
// It must not be called from the loop goroutine itself.
func (l *MainLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted functions in order on the calling goroutine until ctx is done.
// Functions still queued when the loop stops are dropped and later posts are rejected.
// A panicking function is logged and does not stop the loop.
func (l *MainLoop) Run(ctx context.Context) error {
	l.mu.Lock()
	switch {
	case l.closed:
		l.mu.Unlock()
		return ErrLoopClosed
	case l.running:
		l.mu.Unlock()
		return ErrLoopRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.closed = true
		l.queue = nil
		l.mu.Unlock()
	}()

	log := logger.FromContext(ctx)
	log.DebugContext(ctx, "Main loop started")
	for {
		for _, fn := range l.take() {
			if ctx.Err() != nil {
				break
			}
			l.exec(ctx, fn)
		}

		select {
		case <-ctx.Done():
			log.DebugContext(ctx, "Main loop stopped", "pending", l.Len())
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Len returns the number of queued functions.
func (l *MainLoop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// take removes and returns all queued functions.
func (l *MainLoop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	q := l.queue
	l.queue = nil
	return q
}

func (l *MainLoop) exec(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).ErrorContext(ctx, "Recovered panic in main loop", "panic", r)
		}
	}()
	fn()
}
