package logging

import (
	"os"
	"sync"
)

// RingBuffer is a fixed-capacity circular byte buffer that keeps the most
// recent writes. It implements io.Writer; old data is overwritten when the
// capacity is exhausted. Used to hold recent log output in memory for
// crash dumps.
type RingBuffer struct {
	mu      sync.Mutex
	buf     []byte
	cap     int
	head    int
	wrapped bool
}

// NewRingBuffer creates a ring buffer with the given capacity in bytes.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 10 * 1024 * 1024
	}
	return &RingBuffer{
		buf: make([]byte, capacity),
		cap: capacity,
	}
}

// Write implements io.Writer. It never fails and never blocks on space;
// writes wrap around and overwrite the oldest data.
func (rb *RingBuffer) Write(p []byte) (int, error) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	n := len(p)
	if n >= rb.cap {
		// Oversized write: only the trailing cap bytes survive anyway.
		copy(rb.buf, p[n-rb.cap:])
		rb.head = 0
		rb.wrapped = true
		return n, nil
	}

	remaining := rb.cap - rb.head
	if n <= remaining {
		copy(rb.buf[rb.head:], p)
		rb.head += n
		if rb.head == rb.cap {
			rb.head = 0
			rb.wrapped = true
		}
		return n, nil
	}

	copy(rb.buf[rb.head:], p[:remaining])
	copy(rb.buf, p[remaining:])
	rb.head = n - remaining
	rb.wrapped = true
	return n, nil
}

// Bytes returns a copy of the buffer contents in write order.
func (rb *RingBuffer) Bytes() []byte {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if !rb.wrapped {
		out := make([]byte, rb.head)
		copy(out, rb.buf[:rb.head])
		return out
	}

	out := make([]byte, rb.cap)
	copy(out, rb.buf[rb.head:])
	copy(out[rb.cap-rb.head:], rb.buf[:rb.head])
	return out
}

// DumpToFile writes the buffered contents to path in write order.
func (rb *RingBuffer) DumpToFile(path string) error {
	return os.WriteFile(path, rb.Bytes(), 0o644)
}
