// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"sync"
	"time"
)

// mockClock has a settable wall time and hands out one manual timer.
type mockClock struct {
	mu    sync.Mutex
	now   time.Time
	timer *mockTimer
}

func newMockClock(now time.Time) *mockClock {
	return &mockClock{now: now}
}

func (m *mockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *mockClock) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

func (m *mockClock) NewTimer(d time.Duration) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer == nil {
		m.timer = &mockTimer{cbox: make(chan time.Time, 1)}
	}
	m.timer.setLast(d)
	return m.timer
}

func (m *mockClock) Timer() *mockTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timer
}

type mockTimer struct {
	cbox chan time.Time

	mu   sync.Mutex
	last time.Duration
}

func (m *mockTimer) C() <-chan time.Time { return m.cbox }
func (m *mockTimer) Stop() bool          { return true }

func (m *mockTimer) Reset(d time.Duration) bool {
	m.setLast(d)
	return true
}

func (m *mockTimer) setLast(d time.Duration) {
	m.mu.Lock()
	m.last = d
	m.mu.Unlock()
}

func (m *mockTimer) Last() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *mockTimer) Fire() {
	select {
	case m.cbox <- time.Now():
	default:
	}
}
