// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Acquire(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		held    bool
		ctx     func(t *testing.T) context.Context
		wantErr error
	}{
		{
			name: "free gate",
		},
		{
			name:    "free gate with canceled context",
			ctx:     canceledContext,
			wantErr: nil,
		},
		{
			name:    "held gate times out",
			timeout: 10 * time.Millisecond,
			held:    true,
			wantErr: ErrGateTimeout,
		},
		{
			name:    "held gate with canceled context",
			held:    true,
			ctx:     canceledContext,
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.timeout)
			if tt.held {
				require.NoError(t, g.Acquire(t.Context()))
			}
			ctx := t.Context()
			if tt.ctx != nil {
				ctx = tt.ctx(t)
			}

			err := g.Acquire(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, g.Busy(), "a failed acquire must not change the holder")
				return
			}
			require.NoError(t, err)
			assert.True(t, g.Busy())
		})
	}
}

func canceledContext(t *testing.T) context.Context {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	return ctx
}

func TestGate_WaitsForRelease(t *testing.T) {
	g := NewGate(0)
	require.NoError(t, g.Acquire(t.Context()))

	acquired := make(chan error, 1)
	go func() { acquired <- g.Acquire(t.Context()) }()

	select {
	case <-acquired:
		require.FailNow(t, "acquired a held gate")
	case <-time.After(20 * time.Millisecond):
	}

	g.Release()
	select {
	case err := <-acquired:
		assert.NoError(t, err)
	case <-time.After(waitTimeout):
		require.FailNow(t, "gate was not handed over")
	}
	assert.True(t, g.Busy())
}

func TestGate_Release(t *testing.T) {
	g := NewGate(0)
	assert.False(t, g.Busy())
	assert.Panics(t, g.Release)

	require.NoError(t, g.Acquire(t.Context()))
	assert.NotPanics(t, g.Release)
	assert.False(t, g.Busy())
}
