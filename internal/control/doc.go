// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package control serves the line-oriented TCP console used by room
// controllers to drive the recorder.
//
// Each accepted connection becomes a Session. A reader goroutine turns
// socket activity into events; a single handler goroutine per session
// frames lines, parses them into Commands and dispatches them to the state
// machine or the status reporter. Handler work is bounded server-wide by
// MaxWorkerThreads permits.
//
// The endpoint is best effort: a bind or configuration failure disables it
// and Start reports a *StartupError, but the host process keeps running.
package control
