// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/tracerelay/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var _ ProgressSink = (*Service)(nil)

// Service owns the single traceroute run of the process.
// Create one with [New] and share it.
type Service struct {
	cfg      Config
	engine   Engine
	dispatch Dispatcher
	gate     *Gate
	metrics  metrics
	tracer   trace.Tracer
	tasks    sync.WaitGroup

	// mu guards the run state below and orders posted notifications.
	mu     sync.Mutex
	buffer Buffer
	active bool
	log    *slog.Logger

	lmu      sync.RWMutex
	listener Listener
}

// New creates a service running engine and delivering notifications through d.
func New(cfg Config, engine Engine, d Dispatcher) *Service {
	return &Service{
		cfg:      cfg,
		engine:   engine,
		dispatch: d,
		gate:     NewGate(cfg.AcquireTimeout),
		metrics:  newMetrics(),
		tracer:   otel.Tracer("traceroute"),
	}
}

// SetListener replaces the registered listener. A nil listener disables notifications.
func (s *Service) SetListener(l Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listener = l
}

// SetListenerFunc registers a new [SimpleListener] after letting build assign its handlers.
func (s *Service) SetListenerFunc(build func(l *SimpleListener)) {
	l := &SimpleListener{}
	if build != nil {
		build(l)
	}
	s.SetListener(l)
}

// Run traces hostname. In async mode the run is started in the background,
// detached from the cancellation of ctx, and Run returns nil at once; its
// outcome is only delivered to the listener. Otherwise Run blocks and returns
// the result, which is delivered to the listener as well.
func (s *Service) Run(ctx context.Context, hostname string, async bool) *Result {
	args := []string{s.cfg.program(), hostname}
	if async {
		s.Go(context.WithoutCancel(ctx), args)
		return nil
	}
	res := s.RunArgs(ctx, args)
	return &res
}

// Go starts RunArgs in the background and returns its handle.
// Canceling ctx aborts a run that is still waiting for the gate
// and is passed on to the engine.
func (s *Service) Go(ctx context.Context, args []string) *Task {
	args = slices.Clone(args)
	t := newTask()
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		t.finish(s.RunArgs(ctx, args))
	}()
	return t
}

// RunArgs executes the engine with args once the previous run has finished.
// The outcome is delivered to the listener and returned; failures are never
// returned as errors. A call that cannot acquire the gate returns and delivers
// a [CodeAborted] failure without running the engine.
func (s *Service) RunArgs(ctx context.Context, args []string) Result {
	ctx, span := s.tracer.Start(ctx, "traceroute.run", trace.WithAttributes(
		attribute.StringSlice("traceroute.args", args),
	))
	defer span.End()
	log := logger.FromContext(ctx).With("args", args)
	ctx = logger.IntoContext(ctx, log)

	if err := s.gate.Acquire(ctx); err != nil {
		log.WarnContext(ctx, "Traceroute aborted before start", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to acquire execution gate")
		return s.abort()
	}
	defer s.gate.Release()

	s.begin(log, args)
	log.InfoContext(ctx, "Starting traceroute")
	start := time.Now()
	code := s.execute(ctx, args)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	res := s.finish(code)
	s.metrics.observe(res)

	span.SetAttributes(attribute.Int("traceroute.result.code", res.Code))
	if !res.Succeeded() {
		log.WarnContext(ctx, "Traceroute failed", "code", res.Code)
		span.SetStatus(codes.Error, res.Message)
		return res
	}
	log.DebugContext(ctx, "Traceroute finished", "bytes", len(res.Message))
	return res
}

// AppendProgress records text reported by the engine and forwards it to the listener.
// Text reported while no run is active is kept in the buffer but not delivered.
func (s *Service) AppendProgress(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer.Append(text)
	if !s.active {
		logger.FromContext(context.Background()).Warn("Progress reported outside of a traceroute run", "bytes", len(text))
		return
	}
	s.metrics.updates.Inc()
	if s.currentListener() == nil {
		return
	}
	s.post(func(l Listener) { l.OnUpdate(text) })
}

// Wait blocks until all runs started with [Service.Go] or async [Service.Run] have finished.
func (s *Service) Wait() {
	s.tasks.Wait()
}

// Program returns the program name prepended to a bare hostname.
func (s *Service) Program() string {
	return s.cfg.program()
}

// Busy reports whether a run is in progress.
func (s *Service) Busy() bool {
	return s.gate.Busy()
}

// Collectors returns the prometheus collectors of the service.
func (s *Service) Collectors() []prometheus.Collector {
	return s.metrics.GetCollectors()
}

// begin resets the buffer, marks the run as active and announces it
// to a listener implementing [StartListener].
func (s *Service) begin(log *slog.Logger, args []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.Reset()
	s.active = true
	s.log = log
	s.metrics.running.Set(1)

	args = slices.Clone(args)
	s.post(func(l Listener) {
		if sl, ok := l.(StartListener); ok {
			sl.OnStart(args)
		}
	})
}

// abort reports a call that never acquired the gate. The failure is
// delivered like the outcome of a run, but it is not part of any run's
// stream of updates.
func (s *Service) abort() Result {
	res := Result{Code: CodeAborted, Message: AbortedMessage}
	s.metrics.observe(res)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.post(func(l Listener) { l.OnFailed(res.Code, res.Message) })
	return res
}

// execute calls the engine and converts a panic into [CodeEngineFault].
func (s *Service) execute(ctx context.Context, args []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).ErrorContext(ctx, "Traceroute engine panicked", "panic", r)
			code = CodeEngineFault
		}
	}()
	return s.engine.Execute(ctx, args, s)
}

// finish builds the result, posts the terminal notification and ends the run.
// Holding mu while posting keeps every update of the run in front of it.
func (s *Service) finish(code int) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res Result
	if code == CodeSuccess {
		res = Result{Code: code, Message: s.buffer.String()}
		s.post(func(l Listener) { l.OnSuccess(res) })
	} else {
		res = Result{Code: code, Message: FailureMessage}
		s.post(func(l Listener) { l.OnFailed(res.Code, res.Message) })
	}

	s.active = false
	s.log = nil
	s.metrics.running.Set(0)
	return res
}

// post hands notify to the dispatcher. The listener is resolved when the
// notification runs, not when it is posted. Callers must hold mu.
func (s *Service) post(notify func(Listener)) {
	ok := s.dispatch.Post(func() {
		if l := s.currentListener(); l != nil {
			notify(l)
		}
	})
	if !ok && s.log != nil {
		s.log.Warn("Dispatcher rejected traceroute notification")
	}
}

func (s *Service) currentListener() Listener {
	s.lmu.RLock()
	defer s.lmu.RUnlock()
	return s.listener
}
