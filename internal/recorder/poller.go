// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package recorder

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recctl/internal/control/protocol"
	"github.com/ManuGH/recctl/internal/log"
	"github.com/ManuGH/recctl/internal/metrics"
)

// InputPoster receives recorder-derived inputs.
type InputPoster interface {
	PostInput(input protocol.Input)
}

// Poller periodically refreshes a Store from a Source and reports
// recording/idle edges to an InputPoster.
type Poller struct {
	source Source
	store  *Store
	poster InputPoster
	logger zerolog.Logger

	BaseInterval time.Duration
	MaxInterval  time.Duration
	Jitter       time.Duration

	clock   Clock
	trigger chan struct{}

	mu              sync.Mutex
	currentInterval time.Duration
	edgeKnown       bool
	recording       bool
}

// NewPoller creates a poller. poster may be nil.
func NewPoller(source Source, store *Store, poster InputPoster, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		source:       source,
		store:        store,
		poster:       poster,
		logger:       log.WithComponent("recorder.poller"),
		BaseInterval: interval,
		MaxInterval:  10 * interval,
		Jitter:       interval / 10,
		clock:        RealClock{},
		trigger:      make(chan struct{}, 1),
	}
}

// WithClock replaces the poller's clock.
func (p *Poller) WithClock(c Clock) *Poller {
	p.clock = c
	return p
}

// Trigger requests an immediate refresh. It never blocks.
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run refreshes once immediately, then on every interval or Trigger until
// ctx is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info().
		Str(log.FieldEvent, "recorder.poller_started").
		Str("source", p.source.Name()).
		Dur("interval", p.BaseInterval).
		Msg("recorder poller started")

	p.tick(ctx)
	timer := p.clock.NewTimer(p.nextDuration())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Str(log.FieldEvent, "recorder.poller_stopped").Msg("recorder poller stopping")
			return nil
		case <-p.trigger:
			p.tick(ctx)
			if !timer.Stop() {
				select {
				case <-timer.C():
				default:
				}
			}
			timer.Reset(p.nextDuration())
		case <-timer.C():
			p.tick(ctx)
			timer.Reset(p.nextDuration())
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn().Err(err).
			Str(log.FieldEvent, "recorder.refresh_failed").
			Str("source", p.source.Name()).
			Msg("schedule refresh failed, backing off")
		p.increaseBackoff()
		return
	}
	p.resetBackoff()
}

// Refresh fetches the schedule once and publishes any edge change. On
// error the previous snapshot is kept.
func (p *Poller) Refresh(ctx context.Context) error {
	start := p.clock.Now()
	list, err := p.source.Fetch(ctx)
	metrics.RecordRecorderRefresh(p.source.Name(), len(list), p.clock.Now().Sub(start), err)
	if err != nil {
		return err
	}
	p.store.Replace(list)
	p.logger.Debug().
		Str(log.FieldEvent, "recorder.refreshed").
		Int("entries", p.store.Len()).
		Msg("schedule refreshed")
	p.publishEdge()
	return nil
}

func (p *Poller) publishEdge() {
	_, has := p.store.CurrentRecording()

	p.mu.Lock()
	changed := !p.edgeKnown || p.recording != has
	p.edgeKnown = true
	p.recording = has
	p.mu.Unlock()

	if !changed || p.poster == nil {
		return
	}
	input := protocol.InputRecorderIdle
	if has {
		input = protocol.InputRecorderRecording
	}
	p.logger.Info().
		Str(log.FieldEvent, "recorder.edge").
		Str(log.FieldInput, string(input)).
		Msg("recorder activity changed")
	p.poster.PostInput(input)
}

func (p *Poller) nextDuration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	interval := p.currentInterval
	if interval == 0 {
		interval = p.BaseInterval
	}
	d := interval + p.jitterDuration()
	if d <= 0 {
		d = interval
	}
	return d
}

func (p *Poller) jitterDuration() time.Duration {
	// Random duration between -Jitter and +Jitter
	ms := int64(p.Jitter / time.Millisecond)
	if ms <= 0 {
		return 0
	}
	delta := rand.Int63n(ms*2) - ms
	return time.Duration(delta) * time.Millisecond
}

func (p *Poller) increaseBackoff() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentInterval == 0 {
		p.currentInterval = p.BaseInterval
	}
	p.currentInterval *= 2
	if p.currentInterval > p.MaxInterval {
		p.currentInterval = p.MaxInterval
	}
	p.logger.Info().Str("next_interval", p.currentInterval.String()).Msg("increased poll backoff")
}

func (p *Poller) resetBackoff() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.currentInterval != 0 && p.currentInterval != p.BaseInterval {
		p.logger.Info().Str("next_interval", p.BaseInterval.String()).Msg("reset poll backoff")
	}
	p.currentInterval = p.BaseInterval
}
