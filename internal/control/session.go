// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/recctl/internal/control/framer"
	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/metrics"
	"github.com/ManuGH/recctl/internal/telemetry"
)

const readBufferSize = 1024

type eventKind int

const (
	eventConnected eventKind = iota
	eventData
	eventClosed
)

func (k eventKind) String() string {
	switch k {
	case eventConnected:
		return "connected"
	case eventData:
		return "data"
	default:
		return "closed"
	}
}

type event struct {
	kind eventKind
	data []byte
	err  error
}

// Session is one control connection.
type Session struct {
	id     string
	remote string
	conn   net.Conn
	server *Server

	framer  *framer.Framer
	writer  *lineWriter
	limiter *rate.Limiter
	logger  zerolog.Logger

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once

	lines   int
	dropped uint64
}

func newSession(s *Server, conn net.Conn) *Session {
	sess := &Session{
		id:     uuid.NewString(),
		remote: conn.RemoteAddr().String(),
		conn:   conn,
		server: s,
		framer: framer.New(),
		done:   make(chan struct{}),
	}
	sess.logger = s.logger.With().
		Str(log.FieldSessionID, sess.id).
		Str(log.FieldRemoteAddr, sess.remote).
		Logger()
	sess.writer = newLineWriter(conn, s.cfg.MaxSendAttempts, s.cfg.WriteTimeout(), sess.live, sess.shutdown, sess.logger)
	if s.cfg.CommandRate > 0 {
		sess.limiter = rate.NewLimiter(rate.Limit(s.cfg.CommandRate), s.cfg.CommandBurst)
	}
	return sess
}

// Output writes one response line. It is a no-op once the session is
// closed or the server is disabled.
func (s *Session) Output(text string) {
	s.writer.Output(text)
}

func (s *Session) live() bool {
	return !s.closed.Load() && s.server.enabled.Load()
}

// shutdown closes the connection, which unblocks the reader.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *Session) run(ctx context.Context) {
	ctx = log.ContextWithSessionID(ctx, s.id)
	events := make(chan event, 1)
	readerDone := make(chan struct{})
	go s.readLoop(ctx, events, readerDone)

	defer func() {
		s.shutdown()
		<-readerDone
		s.logger.Info().
			Str(log.FieldEvent, "control.session_closed").
			Int("lines", s.lines).
			Msg("control session closed")
		if s.server.audit != nil {
			s.server.audit.SessionClosed(ctx, s.remote, s.lines)
		}
	}()

	if !s.handle(ctx, event{kind: eventConnected}) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev := <-events:
			if !s.handle(ctx, ev) {
				return
			}
		}
	}
}

// readLoop turns socket activity into events. A read deadline of IdleTime
// lets it notice shutdown between reads; a timeout is not an error.
func (s *Session) readLoop(ctx context.Context, events chan<- event, done chan<- struct{}) {
	defer close(done)

	idle := s.server.cfg.IdleTime()
	buf := make([]byte, readBufferSize)
	for {
		if idle > 0 {
			_ = s.conn.SetReadDeadline(time.Now().Add(idle))
		}
		n, err := s.conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !s.emit(ctx, events, event{kind: eventData, data: data}) {
				return
			}
		}
		if err == nil {
			continue
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			if ctx.Err() != nil || s.closed.Load() {
				return
			}
			continue
		}
		s.emit(ctx, events, event{kind: eventClosed, err: err})
		return
	}
}

func (s *Session) emit(ctx context.Context, events chan<- event, ev event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	case <-s.done:
		return false
	}
}

// handle processes one event while holding a worker permit. It returns
// false when the session should end.
func (s *Session) handle(ctx context.Context, ev event) bool {
	if ev.kind == eventClosed {
		evt := s.logger.Debug()
		if ev.err != nil && !errors.Is(ev.err, io.EOF) && !s.closed.Load() {
			evt = s.logger.Info().Err(ev.err)
		}
		evt.Str(log.FieldEvent, "control.peer_closed").Msg("connection closed by peer")
		return false
	}

	if err := s.server.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer s.server.sem.Release(1)

	switch ev.kind {
	case eventConnected:
		s.logger.Info().
			Str(log.FieldEvent, "control.session_opened").
			Msg("control session opened")
		if s.server.audit != nil {
			s.server.audit.SessionOpened(ctx, s.remote)
		}
	case eventData:
		for _, line := range s.framer.Feed(ev.data) {
			s.handleLine(ctx, line)
		}
		if d := s.framer.Dropped(); d > s.dropped {
			for ; s.dropped < d; s.dropped++ {
				metrics.RecordLineDropped("too_long")
			}
			s.logger.Warn().
				Str(log.FieldEvent, "control.line_too_long").
				Int("max_bytes", framer.MaxLineBytes).
				Msg("discarded over-long line")
		}
	}
	return true
}

func (s *Session) handleLine(ctx context.Context, line string) {
	s.lines++

	if s.limiter != nil && !s.limiter.Allow() {
		metrics.RecordLineDropped("throttled")
		s.logger.Warn().
			Str(log.FieldEvent, "control.throttled").
			Str(log.FieldLine, line).
			Msg("command rate exceeded, dropping line")
		return
	}

	ctx, span := s.server.tracer.Start(ctx, "control.command",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(telemetry.SessionAttributes(s.id, s.remote)...),
	)
	defer span.End()

	s.logger.Debug().
		Str(log.FieldEvent, "control.rx").
		Str(log.FieldLine, line).
		Msg("line received")

	cmd, err := protocol.Parse(line)
	if err != nil {
		span.SetAttributes(telemetry.ErrorAttributes(err, metrics.OutcomeNotFound)...)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordCommand("", metrics.OutcomeNotFound)
		s.logger.Info().
			Str(log.FieldEvent, "control.command_not_found").
			Str(log.FieldLine, line).
			Msg("unknown command")
		s.Output(protocol.NotFoundLine(line))
		return
	}

	action := s.server.dispatcher.Dispatch(cmd)
	span.SetAttributes(telemetry.CommandAttributes(cmd.String(), action.Kind.String(), string(action.Input))...)

	switch action.Kind {
	case protocol.ActionPostInput:
		s.server.machine.PostInput(action.Input)
		metrics.RecordCommand(cmd.String(), metrics.OutcomePosted)
		s.logger.Info().
			Str(log.FieldEvent, "control.input_posted").
			Str(log.FieldCommand, cmd.String()).
			Str(log.FieldInput, string(action.Input)).
			Msg("command forwarded to state machine")
		if s.server.audit != nil {
			s.server.audit.CommandInput(ctx, s.remote, cmd.String(), string(action.Input))
		}

	case protocol.ActionReportStatus:
		lines := s.server.reporter.Report()
		for _, l := range lines {
			s.Output(l)
		}
		metrics.RecordCommand(cmd.String(), metrics.OutcomeStatus)
		span.SetAttributes(telemetry.StatusAttributes(len(lines))...)

	default:
		metrics.RecordCommand(cmd.String(), metrics.OutcomeUnhandled)
		span.SetAttributes(telemetry.ErrorAttributes(protocol.ErrUnhandledCommand, metrics.OutcomeUnhandled)...)
		s.logger.Info().
			Str(log.FieldEvent, "control.command_unhandled").
			Str(log.FieldCommand, cmd.String()).
			Msg("command has no handler")
		if s.server.audit != nil {
			s.server.audit.CommandRejected(ctx, s.remote, cmd.String())
		}
		s.Output(protocol.UnhandledLine(line))
	}
}
