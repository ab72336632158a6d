// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package statemachine drives the recorder's control state from operator
// commands and recorder activity.
package statemachine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/fsm"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/metrics"
)

// State is a control state.
type State string

const (
	StateInit      State = "Init"
	StateIdle      State = "Idle"
	StateRecording State = "Recording"
	StatePaused    State = "Paused"
)

// DefaultQueueSize bounds pending inputs.
const DefaultQueueSize = 64

// Input outcomes.
const (
	outcomeApplied = "applied"
	outcomeIgnored = "ignored"
	outcomeDropped = "dropped"
)

type transition = fsm.Transition[State, protocol.Input]

// Transitions is the full edge table.
var Transitions = []transition{
	{From: StateInit, Event: protocol.InputRecorderIdle, To: StateIdle},
	{From: StateInit, Event: protocol.InputRecorderRecording, To: StateRecording},

	{From: StateIdle, Event: protocol.InputCommandStart, To: StateRecording},
	{From: StateIdle, Event: protocol.InputRecorderRecording, To: StateRecording},

	{From: StateRecording, Event: protocol.InputCommandPause, To: StatePaused},
	{From: StateRecording, Event: protocol.InputCommandStop, To: StateIdle},
	{From: StateRecording, Event: protocol.InputRecorderIdle, To: StateIdle},
	{From: StateRecording, Event: protocol.InputCommandExtend, To: StateRecording},

	{From: StatePaused, Event: protocol.InputCommandResume, To: StateRecording},
	{From: StatePaused, Event: protocol.InputCommandStop, To: StateIdle},
	{From: StatePaused, Event: protocol.InputRecorderIdle, To: StateIdle},
	{From: StatePaused, Event: protocol.InputRecorderRecording, To: StatePaused},
}

// TransitionFunc observes an applied transition.
type TransitionFunc func(from, to State, input protocol.Input)

// Machine serializes inputs through a bounded queue onto a strict FSM.
type Machine struct {
	fsm    *fsm.Machine[State, protocol.Input]
	queue  chan protocol.Input
	logger zerolog.Logger

	mu        sync.RWMutex
	listeners []TransitionFunc
}

// New creates a machine in StateInit. queueSize <= 0 uses DefaultQueueSize.
func New(queueSize int) (*Machine, error) {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	m, err := fsm.New(StateInit, Transitions)
	if err != nil {
		return nil, fmt.Errorf("build state machine: %w", err)
	}
	return &Machine{
		fsm:    m,
		queue:  make(chan protocol.Input, queueSize),
		logger: log.WithComponent("statemachine"),
	}, nil
}

// OnTransition registers fn for every applied transition.
func (m *Machine) OnTransition(fn TransitionFunc) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// CurrentState returns the state name.
func (m *Machine) CurrentState() string {
	return string(m.fsm.State())
}

// State returns the typed state.
func (m *Machine) State() State {
	return m.fsm.State()
}

// PostInput enqueues input without blocking. When the queue is full the
// input is dropped.
func (m *Machine) PostInput(input protocol.Input) {
	select {
	case m.queue <- input:
	default:
		metrics.RecordStateMachineInput(string(input), outcomeDropped)
		m.logger.Warn().
			Str(log.FieldEvent, "statemachine.input_dropped").
			Str(log.FieldInput, string(input)).
			Int("queue_size", cap(m.queue)).
			Msg("input queue full, dropping input")
	}
}

// Run applies queued inputs in order until ctx is cancelled.
func (m *Machine) Run(ctx context.Context) error {
	m.logger.Info().
		Str(log.FieldEvent, "statemachine.started").
		Str("state", m.CurrentState()).
		Msg("state machine started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Str(log.FieldEvent, "statemachine.stopped").Msg("state machine stopped")
			return nil
		case input := <-m.queue:
			_ = m.Apply(ctx, input)
		}
	}
}

// Apply fires input synchronously. Inputs without an edge from the current
// state are ignored and reported as fsm.ErrInvalidTransition.
func (m *Machine) Apply(ctx context.Context, input protocol.Input) error {
	from := m.fsm.State()
	to, err := m.fsm.Fire(ctx, input)
	if err != nil {
		metrics.RecordStateMachineInput(string(input), outcomeIgnored)
		evt := m.logger.Debug()
		if !errors.Is(err, fsm.ErrInvalidTransition) {
			evt = m.logger.Warn()
		}
		evt.Err(err).
			Str(log.FieldEvent, "statemachine.input_ignored").
			Str(log.FieldInput, string(input)).
			Str(log.FieldOldState, string(from)).
			Msg("input ignored")
		return err
	}

	metrics.RecordStateMachineInput(string(input), outcomeApplied)
	m.logger.Info().
		Str(log.FieldEvent, "statemachine.transition").
		Str(log.FieldInput, string(input)).
		Str(log.FieldOldState, string(from)).
		Str(log.FieldNewState, string(to)).
		Msg("state transition")

	m.mu.RLock()
	listeners := append([]TransitionFunc(nil), m.listeners...)
	m.mu.RUnlock()
	for _, fn := range listeners {
		fn(from, to, input)
	}
	return nil
}
