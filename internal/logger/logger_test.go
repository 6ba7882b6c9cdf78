// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package logger

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		handlers []slog.Handler
		logLevel string
		want     slog.Level
	}{
		{name: "default handler, default level", want: slog.LevelInfo},
		{name: "default handler, debug level", logLevel: "DEBUG", want: slog.LevelDebug},
		{name: "custom handler", handlers: []slog.Handler{slog.NewTextHandler(&bytes.Buffer{}, nil)}, want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", tt.logLevel)

			log := NewLogger(tt.handlers...)
			require.NotNil(t, log)
			assert.True(t, log.Enabled(t.Context(), tt.want))
			if len(tt.handlers) > 0 {
				assert.Same(t, tt.handlers[0], log.Handler())
			}
		})
	}
}

func TestFromContext(t *testing.T) {
	custom := NewLogger(slog.NewTextHandler(&bytes.Buffer{}, nil))

	tests := []struct {
		name    string
		ctx     context.Context
		wantSet bool
	}{
		{name: "context with logger", ctx: IntoContext(t.Context(), custom), wantSet: true},
		{name: "context without logger", ctx: t.Context()},
		{name: "nil context", ctx: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromContext(tt.ctx)
			require.NotNil(t, got)
			if tt.wantSet {
				assert.Same(t, custom, got)
				return
			}
			assert.IsType(t, &slog.JSONHandler{}, got.Handler())
		})
	}
}

func TestNewContextWithLogger(t *testing.T) {
	parent := IntoContext(t.Context(), NewLogger())

	ctx, cancel := NewContextWithLogger(parent)
	defer cancel()

	assert.NotEqual(t, parent, ctx)
	assert.Same(t, FromContext(parent), FromContext(ctx))

	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.NoError(t, parent.Err())
}

func TestMiddleware(t *testing.T) {
	want := NewLogger(slog.NewTextHandler(&bytes.Buffer{}, nil))
	var got *slog.Logger
	handler := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got, _ = r.Context().Value(logger{}).(*slog.Logger)
	})

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	Middleware(IntoContext(t.Context(), want))(handler).ServeHTTP(httptest.NewRecorder(), req)

	assert.Same(t, want, got)
}

func TestNewHandler(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		level     string
		wantText  bool
		wantLevel slog.Level
	}{
		{name: "default", wantLevel: slog.LevelInfo},
		{name: "text with debug", format: "TEXT", level: "DEBUG", wantText: true, wantLevel: slog.LevelDebug},
		{name: "lowercase text", format: "text", level: "warn", wantText: true, wantLevel: slog.LevelWarn},
		{name: "json with error", format: "JSON", level: "ERROR", wantLevel: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_FORMAT", tt.format)
			t.Setenv("LOG_LEVEL", tt.level)

			h := newHandler()
			if tt.wantText {
				assert.IsType(t, &slog.TextHandler{}, h)
			} else {
				assert.IsType(t, &slog.JSONHandler{}, h)
			}
			assert.True(t, h.Enabled(t.Context(), tt.wantLevel))
			assert.False(t, h.Enabled(t.Context(), tt.wantLevel-1))
		})
	}
}

func TestGetLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"UNKNOWN", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, getLevel(tt.input))
		})
	}
}
