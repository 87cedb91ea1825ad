package output

import (
	"strings"
	"sync"
)

// Channel is an append-only text sink for one server. The host shell
// usually supplies its own implementation backed by a real output view;
// Buffer is the in-memory default.
type Channel interface {
	Append(text string)
	Clear()
	Reveal()
	Dispose()
}

// Factory creates the channel for a server on first output.
type Factory func(serverID string) Channel

// Buffer is the in-memory Channel used by tests and the demo daemon.
type Buffer struct {
	mu       sync.Mutex
	builder  strings.Builder
	revealed bool
	disposed bool
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

func (b *Buffer) Append(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disposed {
		return
	}
	b.builder.WriteString(text)
}

func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builder.Reset()
}

func (b *Buffer) Reveal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revealed = true
}

func (b *Buffer) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.builder.Reset()
	b.disposed = true
}

// Contents returns the buffered text.
func (b *Buffer) Contents() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.builder.String()
}

// Revealed reports whether the channel was ever surfaced.
func (b *Buffer) Revealed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revealed
}
