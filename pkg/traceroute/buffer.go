// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"strings"
	"sync"
)

// Buffer accumulates the progress text of one run.
// It is safe for concurrent use.
type Buffer struct {
	mu sync.Mutex
	sb *strings.Builder
}

// Append adds text to the end of the buffer, creating it if it was reset.
func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
	b.sb.WriteString(text)
}

// Reset discards the accumulated text.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sb = nil
}

// String returns the accumulated text.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sb == nil {
		return ""
	}
	return b.sb.String()
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sb == nil {
		return 0
	}
	return b.sb.Len()
}
