// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package openwebif talks to an Enigma2 receiver's OpenWebIF HTTP API.
package openwebif

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ManuGH/recctl/internal/log"
)

const maxErrorBody = 512

// Options configures a Client.
type Options struct {
	Timeout          time.Duration
	Username         string
	Password         string
	BreakerThreshold int
	BreakerReset     time.Duration
	HTTPClient       *http.Client
}

type Client struct {
	base     string
	http     *http.Client
	username string
	password string
	breaker  *CircuitBreaker
	log      zerolog.Logger
}

func New(base string, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	threshold := opts.BreakerThreshold
	if threshold <= 0 {
		threshold = 5
	}
	reset := opts.BreakerReset
	if reset <= 0 {
		reset = 30 * time.Second
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     hc,
		username: opts.Username,
		password: opts.Password,
		breaker:  NewCircuitBreaker("openwebif", threshold, reset),
		log:      log.WithComponent("openwebif"),
	}
}

// BaseURL returns the normalized receiver address.
func (c *Client) BaseURL() string { return c.base }

// Breaker exposes the client's circuit breaker.
func (c *Client) Breaker() *CircuitBreaker { return c.breaker }

// Timers returns the receiver's timer list.
func (c *Client) Timers(ctx context.Context) ([]Timer, error) {
	const op = "timerlist"
	var out timerListResponse
	err := c.breaker.Execute(func() error {
		return c.getJSON(ctx, op, "/api/timerlist", &out)
	})
	if err != nil {
		if errors.Is(err, ErrCircuitOpen) {
			c.log.Debug().Str(log.FieldEvent, "openwebif.breaker_open").Msg("skipping request, circuit open")
		}
		return nil, err
	}
	if !out.Result {
		return nil, &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: op, Body: "result=false"}
	}
	return out.Timers, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: op, Err: err}
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).
			Str(log.FieldEvent, "openwebif.request_failed").
			Str(log.FieldPath, path).
			Msg("openwebif request failed")
		return transportError(op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return statusError(op, res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return &OWIError{Sentinel: ErrUpstreamBadResponse, Operation: op, Status: res.StatusCode, Err: err}
	}
	c.log.Debug().
		Str(log.FieldEvent, "openwebif.request_ok").
		Str(log.FieldPath, path).
		Dur("duration", time.Since(start)).
		Msg("openwebif request completed")
	return nil
}
