// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package recorder tracks which recording is running now and which one
// runs next. A Poller refreshes a Store from a Source (an OpenWebIF
// receiver or a YAML schedule file); the Store answers status queries
// from memory.
package recorder
