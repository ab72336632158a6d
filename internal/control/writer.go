// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recctl/internal/control/framer"
	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/metrics"
)

// lineWriter serializes response lines onto one connection.
type lineWriter struct {
	mu       sync.Mutex
	conn     net.Conn
	attempts int
	timeout  time.Duration
	live     func() bool
	onFatal  func()
	logger   zerolog.Logger

	// broken is set once a line was left half-written; nothing more may
	// be sent on this connection.
	broken bool
}

func newLineWriter(conn net.Conn, attempts int, timeout time.Duration, live func() bool, onFatal func(), logger zerolog.Logger) *lineWriter {
	if attempts < 1 {
		attempts = 1
	}
	return &lineWriter{
		conn:     conn,
		attempts: attempts,
		timeout:  timeout,
		live:     live,
		onFatal:  onFatal,
		logger:   logger,
	}
}

// Output writes text plus terminator. It never fails: after the last
// attempt the line is dropped and counted. Bytes already sent by a short
// write are not repeated. If part of the line already reached the wire,
// the connection is unusable and onFatal is called.
func (w *lineWriter) Output(text string) {
	if !w.live() {
		return
	}
	payload := framer.EncodeLine(text, protocol.LineTerminator)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.broken {
		return
	}

	sent := 0
	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if !w.live() {
			return
		}
		if w.timeout > 0 {
			_ = w.conn.SetWriteDeadline(time.Now().Add(w.timeout))
		}
		n, err := w.conn.Write(payload[sent:])
		sent += n
		if err == nil && sent == len(payload) {
			w.logger.Debug().
				Str(log.FieldEvent, "control.tx").
				Str(log.FieldLine, text).
				Msg("line sent")
			return
		}
		if err == nil {
			err = io.ErrShortWrite
		}
		lastErr = err
		w.logger.Debug().Err(err).
			Str(log.FieldEvent, "control.tx_retry").
			Int("attempt", attempt).
			Int("sent", sent).
			Msg("send attempt failed")
	}

	metrics.RecordSendFailure()
	w.logger.Warn().Err(lastErr).
		Str(log.FieldEvent, "control.tx_dropped").
		Str(log.FieldLine, text).
		Int("attempts", w.attempts).
		Msg("dropping response line after repeated send failures")

	if sent > 0 {
		w.broken = true
		w.logger.Warn().
			Str(log.FieldEvent, "control.tx_truncated").
			Int("sent", sent).
			Int("len", len(payload)).
			Msg("partial line on the wire, closing connection")
		if w.onFatal != nil {
			w.onFatal()
		}
	}
}
