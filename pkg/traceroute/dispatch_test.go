// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainLoop_PostOrder(t *testing.T) {
	loop := NewMainLoop()
	const n = 100
	var got []int
	for i := range n {
		require.True(t, loop.Post(func() { got = append(got, i) }))
	}
	assert.Equal(t, n, loop.Len())

	startLoop(t, loop)
	require.NoError(t, loop.Call(t.Context(), func() {}))

	require.Len(t, got, n)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}

func TestMainLoop_PostNil(t *testing.T) {
	loop := NewMainLoop()
	assert.False(t, loop.Post(nil))
	assert.Zero(t, loop.Len())
}

func TestMainLoop_ConcurrentPosts(t *testing.T) {
	loop := NewMainLoop()
	startLoop(t, loop)

	const producers, perProducer = 10, 100
	counts := map[int]int{}
	last := map[int]int{}
	ordered := true
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				loop.Post(func() {
					counts[p]++
					if i < last[p] {
						ordered = false
					}
					last[p] = i
				})
			}
		}()
	}
	wg.Wait()
	require.NoError(t, loop.Call(t.Context(), func() {}))

	var got map[int]int
	var inOrder bool
	require.NoError(t, loop.Call(t.Context(), func() {
		got, inOrder = counts, ordered
	}))
	for p := range producers {
		assert.Equal(t, perProducer, got[p])
	}
	assert.True(t, inOrder, "posts of one producer must run in order")
}

func TestMainLoop_Run(t *testing.T) {
	t.Run("stops on cancel and rejects posts", func(t *testing.T) {
		loop := NewMainLoop()
		ctx, cancel := context.WithCancel(t.Context())
		errc := make(chan error, 1)
		go func() { errc <- loop.Run(ctx) }()

		require.NoError(t, loop.Call(t.Context(), func() {}))
		cancel()
		assert.ErrorIs(t, <-errc, context.Canceled)

		assert.False(t, loop.Post(func() {}))
		assert.ErrorIs(t, loop.Call(t.Context(), func() {}), ErrLoopClosed)
		assert.ErrorIs(t, loop.Run(t.Context()), ErrLoopClosed)
	})

	t.Run("second run is rejected", func(t *testing.T) {
		loop := NewMainLoop()
		startLoop(t, loop)
		require.NoError(t, loop.Call(t.Context(), func() {}))

		assert.ErrorIs(t, loop.Run(t.Context()), ErrLoopRunning)
	})

	t.Run("recovers from panicking functions", func(t *testing.T) {
		loop := NewMainLoop()
		startLoop(t, loop)

		loop.Post(func() { panic("boom") })
		ran := false
		require.NoError(t, loop.Call(t.Context(), func() { ran = true }))
		assert.True(t, ran)
	})
}

func TestMainLoop_Call(t *testing.T) {
	t.Run("waits for execution", func(t *testing.T) {
		loop := NewMainLoop()
		startLoop(t, loop)

		v := 0
		require.NoError(t, loop.Call(t.Context(), func() { v = 42 }))
		assert.Equal(t, 42, v)
	})

	t.Run("context done before execution", func(t *testing.T) {
		loop := NewMainLoop()
		ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
		defer cancel()

		assert.ErrorIs(t, loop.Call(ctx, func() {}), context.DeadlineExceeded)
		assert.Equal(t, 1, loop.Len(), "the function stays queued")
	})
}
