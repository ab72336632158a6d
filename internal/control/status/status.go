// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package status renders the multi-line answer to the Status command.
package status

import (
	"strconv"
	"time"

	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/recorder"
)

// TimeLayout is used for StartTime and EndTime lines.
const TimeLayout = "2006-01-02 15:04:05"

// Block prefixes.
const (
	CurrentPrefix = "CurrentRecording-"
	NextPrefix    = "NextRecording-"
)

// StateSource reports the state machine's current state name.
type StateSource interface {
	CurrentState() string
}

// Reporter builds status lines from a state source and a recorder provider.
type Reporter struct {
	state    StateSource
	provider recorder.Provider
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Reporter) { r.now = now }
}

// WithLocation renders times in loc instead of time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Reporter) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// NewReporter creates a Reporter. provider may be nil, in which case no
// recording blocks are emitted.
func NewReporter(state StateSource, provider recorder.Provider, opts ...Option) *Reporter {
	r := &Reporter{
		state:    state,
		provider: provider,
		now:      time.Now,
		loc:      time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Report returns the status lines without terminators, in output order.
func (r *Reporter) Report() []string {
	lines := make([]string, 0, 13)
	lines = append(lines, protocol.StatusLine(r.state.CurrentState()))
	if r.provider == nil {
		return lines
	}

	now := r.now()
	if cur, ok := r.provider.CurrentRecording(); ok {
		lines = r.appendBlock(lines, CurrentPrefix, cur, now)
	}
	if next, ok := r.provider.NextRecording(); ok {
		lines = r.appendBlock(lines, NextPrefix, next, now)
	}
	return lines
}

func (r *Reporter) appendBlock(lines []string, prefix string, rec recorder.RecordingInfo, now time.Time) []string {
	return append(lines,
		prefix+"Id: "+rec.ID,
		prefix+"Name: "+rec.Name,
		prefix+"StartTime: "+rec.StartTime.In(r.loc).Format(TimeLayout),
		prefix+"EndTime: "+rec.EndTime.In(r.loc).Format(TimeLayout),
		prefix+"MinutesUntilStartTime: "+strconv.Itoa(MinutesUntil(now, rec.StartTime)),
		prefix+"MinutesUntilEndTime: "+strconv.Itoa(MinutesUntil(now, rec.EndTime)),
	)
}

// MinutesUntil returns whole minutes from now to target, truncated toward zero.
func MinutesUntil(now, target time.Time) int {
	return int(target.Sub(now).Minutes())
}
