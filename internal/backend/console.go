package backend

import (
	"bytes"
	"sync"
)

// WriteFunc is a callback for streaming backend output to a bridge client.
type WriteFunc func(data string)

// Console captures the backend process output: a capped replay buffer plus
// fan-out to connected bridge clients.
type Console struct {
	mu      sync.RWMutex
	buffer  bytes.Buffer
	writers map[string]WriteFunc // connID -> writer
	closed  bool
}

func NewConsole() *Console {
	return &Console{
		writers: make(map[string]WriteFunc),
	}
}

// Write appends data to the buffer and fans out to all connected writers.
// Safe to use as the child process's stdout/stderr. Writers are invoked
// outside the lock — they do network I/O, and one stalled connection must
// not backpressure the child's output pipe.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return len(p), nil
	}

	// Buffer last output (cap at 64KB)
	c.buffer.Write(p)
	if c.buffer.Len() > 65536 {
		// Keep last 32KB
		data := c.buffer.Bytes()
		tail := make([]byte, 32768)
		copy(tail, data[len(data)-32768:])
		c.buffer.Reset()
		c.buffer.Write(tail)
	}

	var fns []WriteFunc
	if len(c.writers) > 0 {
		fns = make([]WriteFunc, 0, len(c.writers))
		for _, w := range c.writers {
			fns = append(fns, w)
		}
	}
	c.mu.Unlock()

	s := string(p)
	for _, w := range fns {
		w(s)
	}

	return len(p), nil
}

// Buffer returns the captured output so late-joining clients can replay it.
func (c *Console) Buffer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.buffer.String()
}

// Attach registers a bridge client to receive backend output and returns
// the buffered output in the same step, so nothing the child writes can
// fall between the replay snapshot and the registration. Every byte lands
// in exactly one of the two: the returned replay or the writer stream.
func (c *Console) Attach(id string, fn WriteFunc) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.writers[id] = fn
	}
	return c.buffer.String()
}

// RemoveWriter unregisters a client.
func (c *Console) RemoveWriter(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.writers, id)
}

// Close stops capture. Subsequent writes are discarded.
func (c *Console) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.writers = nil
}
