// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package framer turns a connection's raw byte stream into command lines.
package framer

import (
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// MaxLineBytes bounds a single pending line. Longer lines are discarded.
const MaxLineBytes = 4096

// Framer accumulates bytes across reads and emits complete lines.
// Terminators are CR, LF or CRLF; a CRLF split across two reads counts once.
// Bytes are decoded as ISO-8859-1, so any byte sequence yields a line.
type Framer struct {
	mu         sync.Mutex
	buf        []byte
	maxLine    int
	pendingCR  bool
	discarding bool
	dropped    uint64
	dec        *encoding.Decoder
}

// New returns a Framer with the default line limit.
func New() *Framer {
	return NewWithLimit(MaxLineBytes)
}

// NewWithLimit returns a Framer that discards lines longer than maxLine bytes.
func NewWithLimit(maxLine int) *Framer {
	if maxLine <= 0 {
		maxLine = MaxLineBytes
	}
	return &Framer{
		maxLine: maxLine,
		dec:     charmap.ISO8859_1.NewDecoder(),
	}
}

// Feed appends the bytes of one read and returns every line it completes,
// without terminators. A trailing fragment is kept for the next call.
func (f *Framer) Feed(p []byte) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var lines []string
	for _, b := range p {
		switch b {
		case '\n':
			if f.pendingCR {
				f.pendingCR = false
				continue
			}
			if line, ok := f.take(); ok {
				lines = append(lines, line)
			}
		case '\r':
			f.pendingCR = true
			if line, ok := f.take(); ok {
				lines = append(lines, line)
			}
		default:
			f.pendingCR = false
			if f.discarding {
				continue
			}
			if len(f.buf) >= f.maxLine {
				f.buf = f.buf[:0]
				f.discarding = true
				f.dropped++
				continue
			}
			f.buf = append(f.buf, b)
		}
	}
	return lines
}

// take ends the current line. A line that overflowed is swallowed.
func (f *Framer) take() (string, bool) {
	if f.discarding {
		f.discarding = false
		return "", false
	}
	out, err := f.dec.Bytes(f.buf)
	f.buf = f.buf[:0]
	if err != nil {
		// ISO-8859-1 maps every byte; unreachable in practice.
		return "", false
	}
	return string(out), true
}

// pending returns the length of the buffered partial line.
func (f *Framer) pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buf)
}

// Dropped returns how many over-long lines were discarded.
func (f *Framer) Dropped() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dropped
}
