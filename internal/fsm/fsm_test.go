// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state string
type event string

func TestMachineFire(t *testing.T) {
	var actions []string
	m, err := New[state, event]("off", []Transition[state, event]{
		{From: "off", Event: "toggle", To: "on", Action: func(_ context.Context, from, to state, _ event) error {
			actions = append(actions, string(from)+">"+string(to))
			return nil
		}},
		{From: "on", Event: "toggle", To: "off"},
	})
	require.NoError(t, err)

	to, err := m.Fire(context.Background(), "toggle")
	require.NoError(t, err)
	assert.Equal(t, state("on"), to)
	assert.Equal(t, state("on"), m.State())
	assert.Equal(t, []string{"off>on"}, actions)

	_, err = m.Fire(context.Background(), "explode")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, state("on"), m.State())
}

func TestMachineGuardRejects(t *testing.T) {
	errNope := errors.New("nope")
	m, err := New[state, event]("a", []Transition[state, event]{
		{From: "a", Event: "go", To: "b", Guard: func(context.Context, state, event) error { return errNope }},
	})
	require.NoError(t, err)

	from, err := m.Fire(context.Background(), "go")
	assert.ErrorIs(t, err, errNope)
	assert.Equal(t, state("a"), from)
	assert.Equal(t, state("a"), m.State())
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New[state, event]("a", []Transition[state, event]{
		{From: "a", Event: "go", To: "b"},
		{From: "a", Event: "go", To: "c"},
	})
	assert.Error(t, err)
}
