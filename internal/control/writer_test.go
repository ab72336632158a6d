// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"bytes"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// scriptedConn fails the first `failures` writes and accepts at most
// `chunk` bytes per call (0 = unlimited).
type scriptedConn struct {
	net.Conn

	mu        sync.Mutex
	failures  int
	chunk     int
	calls     int
	deadlines int
	buf       bytes.Buffer
}

var errBrokenPipe = errors.New("broken pipe")

func (c *scriptedConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.failures > 0 {
		c.failures--
		return 0, errBrokenPipe
	}
	if c.chunk > 0 && len(p) > c.chunk {
		c.buf.Write(p[:c.chunk])
		return c.chunk, errors.New("short write")
	}
	c.buf.Write(p)
	return len(p), nil
}

func (c *scriptedConn) SetWriteDeadline(time.Time) error {
	c.mu.Lock()
	c.deadlines++
	c.mu.Unlock()
	return nil
}

func alwaysLive() bool { return true }

func TestWriterRetriesUntilSuccess(t *testing.T) {
	conn := &scriptedConn{failures: 2}
	w := newLineWriter(conn, 3, time.Second, alwaysLive, nil, zerolog.Nop())

	w.Output("Recorder-Status: Idle")

	assert.Equal(t, 3, conn.calls)
	assert.Equal(t, 3, conn.deadlines)
	assert.Equal(t, "Recorder-Status: Idle\n", conn.buf.String())
}

func TestWriterDropsAfterMaxAttempts(t *testing.T) {
	conn := &scriptedConn{failures: 100}
	w := newLineWriter(conn, 3, time.Second, alwaysLive, nil, zerolog.Nop())

	assert.NotPanics(t, func() { w.Output("lost") })
	assert.Equal(t, 3, conn.calls)
	assert.Zero(t, conn.buf.Len())
}

func TestWriterResumesShortWrites(t *testing.T) {
	conn := &scriptedConn{chunk: 4}
	w := newLineWriter(conn, 10, time.Second, alwaysLive, nil, zerolog.Nop())

	w.Output("Recorder-Status: Idle")

	assert.Equal(t, "Recorder-Status: Idle\n", conn.buf.String())
	assert.Equal(t, 6, conn.calls)
}

func TestWriterShortWritesExhaustAttempts(t *testing.T) {
	conn := &scriptedConn{chunk: 4}
	closed := 0
	w := newLineWriter(conn, 3, time.Second, alwaysLive, func() { closed++ }, zerolog.Nop())

	w.Output("Recorder-Status: Idle")

	assert.Equal(t, "Recorder-Sta", conn.buf.String())
	assert.Equal(t, 3, conn.calls)
	assert.Equal(t, 1, closed, "truncated line must close the connection")

	// A later line must not be glued onto the fragment.
	conn.mu.Lock()
	conn.chunk = 0
	conn.mu.Unlock()
	w.Output("TCP-Error: Command not found: x")

	assert.Equal(t, "Recorder-Sta", conn.buf.String())
	assert.Equal(t, 3, conn.calls)
	assert.Equal(t, 1, closed)
}

func TestWriterFailedAttemptsWithoutBytesKeepConnection(t *testing.T) {
	conn := &scriptedConn{failures: 3}
	closed := false
	w := newLineWriter(conn, 3, time.Second, alwaysLive, func() { closed = true }, zerolog.Nop())

	w.Output("lost")
	assert.False(t, closed)

	w.Output("Recorder-Status: Idle")
	assert.Equal(t, "Recorder-Status: Idle\n", conn.buf.String())
}

func TestWriterNoopWhenNotLive(t *testing.T) {
	conn := &scriptedConn{}
	w := newLineWriter(conn, 3, time.Second, func() bool { return false }, nil, zerolog.Nop())

	w.Output("ignored")
	assert.Zero(t, conn.calls)
}

func TestWriterSerializesConcurrentOutput(t *testing.T) {
	conn := &scriptedConn{chunk: 3}
	w := newLineWriter(conn, 100, time.Second, alwaysLive, nil, zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Output("abcdefghij")
		}()
	}
	wg.Wait()

	assert.Equal(t, bytes.Repeat([]byte("abcdefghij\n"), 8), conn.buf.Bytes())
}
