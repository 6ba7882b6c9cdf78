// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/tracerelay/pkg/traceroute"
	"github.com/telekom/tracerelay/test"
)

// scripted returns an engine reporting fragments and returning code.
func scripted(code int, fragments ...string) traceroute.Engine {
	return traceroute.EngineFunc(func(_ context.Context, _ []string, sink traceroute.ProgressSink) int {
		for _, f := range fragments {
			sink.AppendProgress(f)
		}
		return code
	})
}

type fixture struct {
	svc     *traceroute.Service
	loop    *traceroute.MainLoop
	handler http.Handler
}

// newFixture serves a service running engine. The main loop runs until the test ends.
func newFixture(t *testing.T, engine traceroute.Engine) *fixture {
	t.Helper()
	loop := traceroute.NewMainLoop()
	svc := traceroute.New(traceroute.Config{}, engine, loop)

	registry := prometheus.NewRegistry()
	registry.MustRegister(svc.Collectors()...)

	a := New(Config{ListeningAddress: DefaultAddress})
	require.NoError(t, a.RegisterRoutes(t.Context(), NewHandler(svc, loop, registry).Routes()...))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		svc.Wait()
		cancel()
		<-done
	})

	return &fixture{svc: svc, loop: loop, handler: a.Handler()}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequestWithContext(t.Context(), method, path, http.NoBody)
	} else {
		r = httptest.NewRequestWithContext(t.Context(), method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, r)
	return rec
}

func (f *fixture) output(t *testing.T) Output {
	t.Helper()
	rec := f.do(t, http.MethodGet, outputPath, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out Output
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestRunRequest_Validate(t *testing.T) {
	test.MarkAsShort(t)

	tests := []struct {
		name    string
		req     RunRequest
		wantErr bool
	}{
		{name: "host", req: RunRequest{Host: "example.com"}},
		{name: "args", req: RunRequest{Args: []string{"traceroute", "-n", "example.com"}}},
		{name: "empty", req: RunRequest{}, wantErr: true},
		{name: "blank host", req: RunRequest{Host: "  "}, wantErr: true},
		{name: "host and args", req: RunRequest{Host: "a", Args: []string{"traceroute", "b"}}, wantErr: true},
		{name: "args without program", req: RunRequest{Args: []string{"", "b"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, errInvalidRequest)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestHandler_run(t *testing.T) {
	test.MarkAsShort(t)

	tests := []struct {
		name       string
		engine     traceroute.Engine
		body       string
		wantStatus int
		wantResult *traceroute.Result
		wantArgs   []string
	}{
		{
			name:       "sync host",
			engine:     scripted(0, "hop 1\n", "hop 2\n"),
			body:       `{"host":"example.com"}`,
			wantStatus: http.StatusOK,
			wantResult: &traceroute.Result{Code: 0, Message: "hop 1\nhop 2\n"},
			wantArgs:   []string{"traceroute", "example.com"},
		},
		{
			name:       "sync args failure",
			engine:     scripted(2, "partial\n"),
			body:       `{"args":["traceroute","-m","3","example.com"]}`,
			wantStatus: http.StatusOK,
			wantResult: &traceroute.Result{Code: 2, Message: traceroute.FailureMessage},
			wantArgs:   []string{"traceroute", "-m", "3", "example.com"},
		},
		{
			name:       "async host",
			engine:     scripted(0, "hop 1\n"),
			body:       `{"host":"example.com","async":true}`,
			wantStatus: http.StatusAccepted,
			wantArgs:   []string{"traceroute", "example.com"},
		},
		{
			name:       "async args",
			engine:     scripted(0),
			body:       `{"args":["tcptraceroute","example.com"],"async":true}`,
			wantStatus: http.StatusAccepted,
			wantArgs:   []string{"tcptraceroute", "example.com"},
		},
		{name: "malformed body", engine: scripted(0), body: `{"host":`, wantStatus: http.StatusBadRequest},
		{name: "unknown field", engine: scripted(0), body: `{"hostname":"a"}`, wantStatus: http.StatusBadRequest},
		{name: "no target", engine: scripted(0), body: `{}`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &traceroute.EngineMock{ExecuteFunc: tt.engine.Execute}
			f := newFixture(t, mock)

			rec := f.do(t, http.MethodPost, runPath, tt.body)
			f.svc.Wait()

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantResult != nil {
				var got traceroute.Result
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				assert.Equal(t, *tt.wantResult, got)
			}

			if tt.wantArgs == nil {
				assert.Empty(t, mock.ExecuteCalls())
				return
			}
			require.Len(t, mock.ExecuteCalls(), 1)
			if diff := cmp.Diff(tt.wantArgs, mock.ExecuteCalls()[0].Args); diff != "" {
				t.Errorf("engine args mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandler_output(t *testing.T) {
	test.MarkAsShort(t)

	t.Run("idle", func(t *testing.T) {
		f := newFixture(t, scripted(0))
		assert.Equal(t, Output{State: StateIdle}, f.output(t))
	})

	t.Run("succeeded", func(t *testing.T) {
		f := newFixture(t, scripted(0, "hop 1\n", "hop 2\n"))
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, runPath, `{"host":"example.com"}`).Code)

		want := Output{
			State:  StateSucceeded,
			Output: "hop 1\nhop 2\n",
			Result: &traceroute.Result{Code: 0, Message: "hop 1\nhop 2\n"},
		}
		assert.Equal(t, want, f.output(t))
	})

	t.Run("failed keeps partial output", func(t *testing.T) {
		f := newFixture(t, scripted(1, "hop 1\n"))
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, runPath, `{"host":"example.com"}`).Code)

		want := Output{
			State:  StateFailed,
			Output: "hop 1\n",
			Result: &traceroute.Result{Code: 1, Message: traceroute.FailureMessage},
		}
		assert.Equal(t, want, f.output(t))
	})

	t.Run("running", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		f := newFixture(t, traceroute.EngineFunc(func(_ context.Context, _ []string, sink traceroute.ProgressSink) int {
			sink.AppendProgress("hop 1\n")
			close(started)
			<-release
			sink.AppendProgress("hop 2\n")
			return 0
		}))

		require.Equal(t, http.StatusAccepted, f.do(t, http.MethodPost, runPath, `{"host":"example.com","async":true}`).Code)
		<-started
		assert.Equal(t, Output{State: StateRunning, Output: "hop 1\n"}, f.output(t))

		close(release)
		f.svc.Wait()
		got := f.output(t)
		assert.Equal(t, StateSucceeded, got.State)
		assert.Equal(t, "hop 1\nhop 2\n", got.Output)
	})

	t.Run("next run replaces output", func(t *testing.T) {
		f := newFixture(t, scripted(0, "again\n"))
		for range 2 {
			require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, runPath, `{"host":"example.com"}`).Code)
		}
		assert.Equal(t, "again\n", f.output(t).Output)
	})

	t.Run("failed run without output clears previous output", func(t *testing.T) {
		f := newFixture(t, traceroute.EngineFunc(func(_ context.Context, args []string, sink traceroute.ProgressSink) int {
			if args[len(args)-1] == "good.example" {
				sink.AppendProgress("hop 1\n")
				return 0
			}
			return 2
		}))
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, runPath, `{"host":"good.example"}`).Code)
		require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, runPath, `{"host":"bad.example"}`).Code)

		want := Output{
			State:  StateFailed,
			Result: &traceroute.Result{Code: 2, Message: traceroute.FailureMessage},
		}
		assert.Equal(t, want, f.output(t))
	})

	t.Run("loop stopped", func(t *testing.T) {
		loop := traceroute.NewMainLoop()
		ctx, cancel := context.WithCancel(t.Context())
		cancel()
		_ = loop.Run(ctx)

		svc := traceroute.New(traceroute.Config{}, scripted(0), loop)
		a := New(Config{ListeningAddress: DefaultAddress})
		require.NoError(t, a.RegisterRoutes(t.Context(), NewHandler(svc, loop, nil).Routes()...))

		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, outputPath, http.NoBody))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandler_openapi(t *testing.T) {
	test.MarkAsShort(t)
	f := newFixture(t, scripted(0))

	tests := []struct {
		name     string
		accept   string
		wantType string
	}{
		{name: "yaml by default", wantType: "text/yaml"},
		{name: "json on request", accept: "application/json", wantType: "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequestWithContext(t.Context(), http.MethodGet, openapiPath, http.NoBody)
			if tt.accept != "" {
				r.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, r)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))

			doc, err := openapi3.NewLoader().LoadFromData(rec.Body.Bytes())
			require.NoError(t, err)
			require.NoError(t, doc.Validate(t.Context()))
			assert.NotNil(t, doc.Paths.Find(runPath))
			assert.NotNil(t, doc.Paths.Find(outputPath))
		})
	}
}

func TestHandler_metrics(t *testing.T) {
	test.MarkAsShort(t)
	f := newFixture(t, scripted(0))
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, runPath, `{"host":"example.com"}`).Code)

	rec := f.do(t, http.MethodGet, metricsPath, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tracerelay_traceroute_runs_total{status="success"} 1`)
}

func TestHandler_outputTimeout(t *testing.T) {
	test.MarkAsLong(t)

	loop := traceroute.NewMainLoop()
	svc := traceroute.New(traceroute.Config{}, scripted(0), loop)
	h := NewHandler(svc, loop, nil)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	rec := httptest.NewRecorder()
	h.handleOutput(rec, httptest.NewRequestWithContext(ctx, http.MethodGet, outputPath, http.NoBody))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
