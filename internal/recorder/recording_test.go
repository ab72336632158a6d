// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var base = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

func rec(id string, startMin, endMin int) RecordingInfo {
	return RecordingInfo{
		ID:        id,
		Name:      "show " + id,
		StartTime: base.Add(time.Duration(startMin) * time.Minute),
		EndTime:   base.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestScheduleSelection(t *testing.T) {
	sched := NewSchedule([]RecordingInfo{
		rec("late", 60, 90),
		rec("now", -10, 20),
		rec("overlap", 0, 30),
		rec("soon", 30, 45),
	})

	cur, ok := sched.Current(base)
	assert.True(t, ok)
	assert.Equal(t, "now", cur.ID, "earliest start wins among overlapping recordings")

	next, ok := sched.Next(base)
	assert.True(t, ok)
	assert.Equal(t, "soon", next.ID)
}

func TestScheduleBoundaries(t *testing.T) {
	sched := NewSchedule([]RecordingInfo{rec("a", 0, 30)})

	_, ok := sched.Current(base)
	assert.True(t, ok, "start is inclusive")

	_, ok = sched.Current(base.Add(30 * time.Minute))
	assert.False(t, ok, "end is exclusive")

	_, ok = sched.Next(base)
	assert.False(t, ok, "a recording starting now is current, not next")

	next, ok := sched.Next(base.Add(-time.Second))
	assert.True(t, ok)
	assert.Equal(t, "a", next.ID)
}

func TestScheduleDropsInvalidEntries(t *testing.T) {
	sched := NewSchedule([]RecordingInfo{
		rec("empty", 10, 10),
		rec("reversed", 20, 5),
		rec("ok", 1, 2),
	})
	assert.Len(t, sched, 1)
	assert.Equal(t, "ok", sched[0].ID)
}

func TestEmptySchedule(t *testing.T) {
	var sched Schedule
	_, ok := sched.Current(base)
	assert.False(t, ok)
	_, ok = sched.Next(base)
	assert.False(t, ok)
}

func TestStoreEvaluatesAtReadTime(t *testing.T) {
	clock := newMockClock(base.Add(-5 * time.Minute))
	store := NewStore(clock)
	assert.True(t, store.LastRefresh().IsZero())

	store.Replace([]RecordingInfo{rec("a", 0, 30)})
	assert.Equal(t, base.Add(-5*time.Minute), store.LastRefresh())
	assert.Equal(t, 1, store.Len())

	_, ok := store.CurrentRecording()
	assert.False(t, ok)
	next, ok := store.NextRecording()
	assert.True(t, ok)
	assert.Equal(t, "a", next.ID)

	clock.Set(base.Add(time.Minute))
	cur, ok := store.CurrentRecording()
	assert.True(t, ok)
	assert.Equal(t, "a", cur.ID)
	_, ok = store.NextRecording()
	assert.False(t, ok)
}
