// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"sync"
	"time"
)

// Store holds the last fetched schedule and implements Provider.
// Current and next are evaluated against the clock at read time, so a
// snapshot stays correct between refreshes.
type Store struct {
	mu          sync.RWMutex
	schedule    Schedule
	lastRefresh time.Time
	clock       Clock
}

// NewStore returns an empty store. A nil clock uses RealClock.
func NewStore(clock Clock) *Store {
	if clock == nil {
		clock = RealClock{}
	}
	return &Store{clock: clock}
}

// Replace swaps in a new schedule.
func (s *Store) Replace(list []RecordingInfo) {
	sched := NewSchedule(list)
	now := s.clock.Now()

	s.mu.Lock()
	s.schedule = sched
	s.lastRefresh = now
	s.mu.Unlock()
}

func (s *Store) CurrentRecording() (RecordingInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Current(s.clock.Now())
}

func (s *Store) NextRecording() (RecordingInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schedule.Next(s.clock.Now())
}

// LastRefresh returns when the schedule was last replaced; zero if never.
func (s *Store) LastRefresh() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefresh
}

// Len returns the number of recordings held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedule)
}
