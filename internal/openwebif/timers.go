// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package openwebif

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Timer states as reported by the receiver.
const (
	TimerStateWaiting   = 0
	TimerStatePrepared  = 1
	TimerStateRecording = 2
	TimerStateEnded     = 3
)

// Timer is a single scheduled recording from /api/timerlist.
type Timer struct {
	ServiceRef  string           `json:"serviceref"`
	ServiceName string           `json:"servicename"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Begin       IntOrStringInt64 `json:"begin"`
	End         IntOrStringInt64 `json:"end"`
	State       int              `json:"state"`
	Disabled    int              `json:"disabled"`
	EIT         IntOrStringInt64 `json:"eit"`
}

// BeginTime returns the timer start as a time.Time.
func (t Timer) BeginTime() time.Time {
	return time.Unix(int64(t.Begin), 0)
}

// EndTime returns the timer end as a time.Time.
func (t Timer) EndTime() time.Time {
	return time.Unix(int64(t.End), 0)
}

// ID derives a stable identifier from the service reference and start time.
func (t Timer) ID() string {
	return fmt.Sprintf("%s@%d", t.ServiceRef, int64(t.Begin))
}

type timerListResponse struct {
	Result bool    `json:"result"`
	Timers []Timer `json:"timers"`
}

// IntOrStringInt64 handles JSON fields that can be "123" or 123.
type IntOrStringInt64 int64

func (v *IntOrStringInt64) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*v = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("timestamp: invalid string %q", s)
		}
		*v = IntOrStringInt64(i)
		return nil
	}
	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return fmt.Errorf("timestamp: invalid json value: %s", string(b))
	}
	if i, err := n.Int64(); err == nil {
		*v = IntOrStringInt64(i)
		return nil
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("timestamp: invalid number %s", n.String())
	}
	*v = IntOrStringInt64(int64(f))
	return nil
}
