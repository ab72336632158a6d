// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package control

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/semaphore"

	"github.com/ManuGH/recctl/internal/audit"
	"github.com/ManuGH/recctl/internal/config"
	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/metrics"
	"github.com/ManuGH/recctl/internal/telemetry"
)

// announceQueueSize bounds pending Announce calls.
const announceQueueSize = 32

// StateMachine receives command inputs and reports its state. Both calls
// must return promptly.
type StateMachine interface {
	PostInput(input protocol.Input)
	CurrentState() string
}

// StatusReporter renders the answer to the Status command.
type StatusReporter interface {
	Report() []string
}

// Option configures a Server.
type Option func(*Server)

// WithDispatcher replaces the default Command to Input routing.
func WithDispatcher(d *protocol.Dispatcher) Option {
	return func(s *Server) { s.dispatcher = d }
}

// WithAudit records session and command events.
func WithAudit(a *audit.Logger) Option {
	return func(s *Server) { s.audit = a }
}

// WithLogger overrides the component logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// Server accepts control connections and runs one Session per connection.
type Server struct {
	cfg        config.ControlConfig
	machine    StateMachine
	reporter   StatusReporter
	dispatcher *protocol.Dispatcher
	audit      *audit.Logger
	logger     zerolog.Logger
	tracer     trace.Tracer

	enabled atomic.Bool
	wg      sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	listener  net.Listener
	sem       *semaphore.Weighted
	cancel    context.CancelFunc
	stopAfter func() bool
	sessions  map[string]*Session

	announcements chan string
}

// NewServer builds a server over an immutable config snapshot.
func NewServer(cfg config.ControlConfig, machine StateMachine, reporter StatusReporter, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		machine:    machine,
		reporter:   reporter,
		dispatcher: protocol.DefaultDispatcher(),
		logger:     log.WithComponent("control"),
		tracer:     telemetry.Tracer("recctl/control"),
		sessions:   make(map[string]*Session),

		announcements: make(chan string, announceQueueSize),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds the listener and begins accepting. A disabled config is not
// an error. Validation and bind failures disable the server and return a
// *StartupError; callers log it and carry on. Cancelling ctx stops the
// server.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		metrics.SetControlEnabled(false)
		s.logger.Info().
			Str(log.FieldEvent, "control.disabled").
			Msg("control endpoint disabled by configuration")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return &StartupError{Op: "start", Err: ErrServerClosed}
	}
	if s.started {
		return nil
	}

	if err := config.ValidateControl(s.cfg); err != nil {
		return s.disable("validate", "", err)
	}

	addr := s.cfg.ListenAddr()
	lc := net.ListenConfig{KeepAlive: -1}
	if d := s.cfg.VerifyConnectionInterval(); d > 0 {
		lc.KeepAlive = d
	}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return s.disable("listen", addr, err)
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.listener = ln
	s.cancel = cancel
	s.sem = semaphore.NewWeighted(int64(s.cfg.MaxWorkerThreads))
	s.started = true
	s.enabled.Store(true)
	s.stopAfter = context.AfterFunc(ctx, s.Stop)
	metrics.SetControlEnabled(true)

	s.logger.Info().
		Str(log.FieldEvent, "control.listening").
		Str(log.FieldListenAddr, ln.Addr().String()).
		Int("max_workers", s.cfg.MaxWorkerThreads).
		Int("max_send_attempts", s.cfg.MaxSendAttempts).
		Int("max_connections", s.cfg.MaxConnections).
		Dur("idle_time", s.cfg.IdleTime()).
		Dur("verify_interval", s.cfg.VerifyConnectionInterval()).
		Msg("control endpoint listening")

	s.wg.Add(2)
	go s.acceptLoop(runCtx, ln)
	go s.announceLoop(runCtx)
	return nil
}

func (s *Server) disable(op, addr string, err error) error {
	s.enabled.Store(false)
	metrics.SetControlEnabled(false)
	s.logger.Error().Err(err).
		Str(log.FieldEvent, "control.startup_failed").
		Str("op", op).
		Str(log.FieldListenAddr, addr).
		Msg("control endpoint disabled, continuing without it")
	if s.audit != nil {
		s.audit.ControlDisabled(err.Error())
	}
	return &StartupError{Op: op, Addr: addr, Err: err}
}

// Enabled reports whether the endpoint is serving.
func (s *Server) Enabled() bool {
	return s.enabled.Load()
}

// Addr returns the bound listener address, or "" when not serving.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || !s.enabled.Load() {
		return ""
	}
	return s.listener.Addr().String()
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	defer s.wg.Done()

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff *= 2
			}
			if backoff > time.Second {
				backoff = time.Second
			}
			s.logger.Warn().Err(err).
				Str(log.FieldEvent, "control.accept_failed").
				Dur("retry_in", backoff).
				Msg("accept failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0
		s.startSession(ctx, conn)
	}
}

func (s *Server) startSession(ctx context.Context, conn net.Conn) {
	sess := newSession(s, conn)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.sessions[sess.id] = sess
	s.wg.Add(1)
	s.mu.Unlock()

	metrics.RecordConnectionOpened()
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.sessions, sess.id)
			s.mu.Unlock()
			metrics.RecordConnectionClosed()
		}()
		sess.run(ctx)
	}()
}

// Broadcast writes text to every open session. Writes to different
// sessions proceed in parallel; Broadcast returns when all are done.
func (s *Server) Broadcast(text string) {
	if !s.enabled.Load() {
		return
	}
	s.mu.Lock()
	targets := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		targets = append(targets, sess)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, sess := range targets {
		wg.Add(1)
		go func(sess *Session) {
			defer wg.Done()
			sess.Output(text)
		}(sess)
	}
	wg.Wait()
}

// Announce queues text for Broadcast and returns immediately. Queued
// lines go out in call order from a single goroutine; when the queue is
// full the line is dropped.
func (s *Server) Announce(text string) {
	if !s.enabled.Load() {
		return
	}
	select {
	case s.announcements <- text:
	default:
		metrics.RecordAnnouncementDropped()
		s.logger.Warn().
			Str(log.FieldEvent, "control.announce_dropped").
			Str(log.FieldLine, text).
			Msg("announce queue full, dropping line")
	}
}

func (s *Server) announceLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case text := <-s.announcements:
			s.Broadcast(text)
		}
	}
}

// Stop closes the listener and every session and waits for their
// goroutines to exit. It is idempotent and safe on a server that never
// started; a stopped server cannot be restarted.
func (s *Server) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	wasStarted := s.started
	ln := s.listener
	cancel := s.cancel
	stopAfter := s.stopAfter
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	s.enabled.Store(false)
	if stopAfter != nil {
		stopAfter()
	}
	if cancel != nil {
		cancel()
	}
	if ln != nil {
		_ = ln.Close()
	}
	for _, sess := range sessions {
		sess.shutdown()
	}
	s.wg.Wait()

	if wasStarted {
		metrics.SetControlEnabled(false)
		s.logger.Info().Str(log.FieldEvent, "control.stopped").Msg("control endpoint stopped")
	}
}
