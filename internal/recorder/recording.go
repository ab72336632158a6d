// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"sort"
	"time"
)

// RecordingInfo describes a single scheduled or running recording.
type RecordingInfo struct {
	ID        string
	Name      string
	StartTime time.Time
	EndTime   time.Time
}

// ActiveAt reports whether the recording covers t (start inclusive, end exclusive).
func (r RecordingInfo) ActiveAt(t time.Time) bool {
	return !t.Before(r.StartTime) && t.Before(r.EndTime)
}

// Provider answers status queries. Implementations must not block on I/O.
type Provider interface {
	CurrentRecording() (RecordingInfo, bool)
	NextRecording() (RecordingInfo, bool)
}

// Schedule is an ordered list of recordings.
type Schedule []RecordingInfo

// NewSchedule copies list, drops entries whose end is not after their
// start, and orders the rest by start time.
func NewSchedule(list []RecordingInfo) Schedule {
	out := make(Schedule, 0, len(list))
	for _, r := range list {
		if !r.EndTime.After(r.StartTime) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// Current returns the recording active at now. When several overlap the
// earliest start wins.
func (s Schedule) Current(now time.Time) (RecordingInfo, bool) {
	for _, r := range s {
		if r.StartTime.After(now) {
			break
		}
		if r.ActiveAt(now) {
			return r, true
		}
	}
	return RecordingInfo{}, false
}

// Next returns the earliest recording starting after now.
func (s Schedule) Next(now time.Time) (RecordingInfo, bool) {
	for _, r := range s {
		if r.StartTime.After(now) {
			return r, true
		}
	}
	return RecordingInfo{}, false
}
