// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"context"
	"fmt"

	"github.com/ManuGH/recctl/internal/openwebif"
)

// Source fetches the full recording schedule.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]RecordingInfo, error)
}

// NoneSource always reports an empty schedule.
type NoneSource struct{}

func (NoneSource) Name() string { return "none" }

func (NoneSource) Fetch(context.Context) ([]RecordingInfo, error) { return nil, nil }

// TimerLister is the subset of the OpenWebIF client used here.
type TimerLister interface {
	Timers(ctx context.Context) ([]openwebif.Timer, error)
}

// OpenWebIFSource converts receiver timers into recordings. Disabled
// timers and timers that already finished are skipped.
type OpenWebIFSource struct {
	client TimerLister
}

func NewOpenWebIFSource(client TimerLister) *OpenWebIFSource {
	return &OpenWebIFSource{client: client}
}

func (s *OpenWebIFSource) Name() string { return "openwebif" }

func (s *OpenWebIFSource) Fetch(ctx context.Context) ([]RecordingInfo, error) {
	timers, err := s.client.Timers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch timers: %w", err)
	}
	out := make([]RecordingInfo, 0, len(timers))
	for _, t := range timers {
		if t.Disabled != 0 || t.State == openwebif.TimerStateEnded {
			continue
		}
		out = append(out, RecordingInfo{
			ID:        t.ID(),
			Name:      t.Name,
			StartTime: t.BeginTime(),
			EndTime:   t.EndTime(),
		})
	}
	return out, nil
}
