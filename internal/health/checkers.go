// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// ListenerChecker reports whether the TCP control endpoint is serving.
// A disabled endpoint degrades the process but never fails readiness: the
// daemon keeps running without it.
type ListenerChecker struct {
	enabled func() bool
	addr    func() string
}

// NewListenerChecker creates a checker over the control server's state.
func NewListenerChecker(enabled func() bool, addr func() string) *ListenerChecker {
	return &ListenerChecker{enabled: enabled, addr: addr}
}

func (c *ListenerChecker) Name() string {
	return "control_listener"
}

func (c *ListenerChecker) Check(_ context.Context) CheckResult {
	if !c.enabled() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "control endpoint disabled",
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "listening on " + c.addr(),
	}
}

// RefreshChecker reports the age of the recorder schedule snapshot.
type RefreshChecker struct {
	lastRefresh func() time.Time
	interval    time.Duration
	now         func() time.Time
}

// NewRefreshChecker creates a checker that degrades when the snapshot is
// older than three poll intervals.
func NewRefreshChecker(lastRefresh func() time.Time, interval time.Duration) *RefreshChecker {
	return &RefreshChecker{lastRefresh: lastRefresh, interval: interval, now: time.Now}
}

func (c *RefreshChecker) Name() string {
	return "recorder_snapshot"
}

func (c *RefreshChecker) Check(_ context.Context) CheckResult {
	last := c.lastRefresh()
	if last.IsZero() {
		return CheckResult{
			Status:  StatusDegraded,
			Message: "no successful schedule refresh yet",
		}
	}

	age := c.now().Sub(last)
	if c.interval > 0 && age > 3*c.interval {
		return CheckResult{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("schedule snapshot is stale (%s old)", age.Truncate(time.Second)),
		}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: "schedule snapshot fresh",
	}
}

// FileChecker reports whether a configured file is present and non-empty.
// An empty path means the file is optional and always healthy.
type FileChecker struct {
	name string
	path string
}

func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string {
	return c.name
}

func (c *FileChecker) Check(_ context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured"}
	}

	info, err := os.Stat(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return CheckResult{Status: StatusUnhealthy, Error: "file not found", Message: c.path}
	case err != nil:
		return CheckResult{Status: StatusUnhealthy, Error: err.Error(), Message: c.path}
	case info.IsDir():
		return CheckResult{Status: StatusUnhealthy, Error: "expected file, got directory", Message: c.path}
	case info.Size() == 0:
		return CheckResult{Status: StatusDegraded, Message: c.path + " is empty"}
	}
	return CheckResult{Status: StatusHealthy, Message: c.path}
}
