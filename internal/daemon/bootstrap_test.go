// SPDX-License-Identifier: MIT

package daemon

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/recctl/internal/config"
	"github.com/ManuGH/recctl/internal/statemachine"
)

func writeSchedule(t *testing.T, now time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	body := fmt.Sprintf(`recordings:
  - id: evening-news
    name: Evening News
    start: %q
    end: %q
`, now.Add(-10*time.Minute).UTC().Format(time.RFC3339), now.Add(50*time.Minute).UTC().Format(time.RFC3339))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func testAppConfig(t *testing.T, schedule string) config.AppConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Version = "test"

	_, portStr, err := net.SplitHostPort(reserveListenAddr(t))
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	cfg.Control.BindHost = "127.0.0.1"
	cfg.Control.Port = uint16(port)
	cfg.Control.IdleTimeMs = 20
	cfg.Control.MaxWorkerThreads = 4
	cfg.Control.AnnounceStateChanges = true

	cfg.Admin.ListenAddr = reserveListenAddr(t)
	cfg.Admin.ShutdownTimeout = 2 * time.Second

	cfg.Recorder.Source = config.RecorderSourceFile
	cfg.Recorder.ScheduleFile = schedule
	cfg.Recorder.PollInterval = time.Hour
	cfg.Recorder.Timezone = "UTC"
	return cfg
}

func readUntil(t *testing.T, r *bufio.Reader, conn net.Conn, want string) []string {
	t.Helper()
	var seen []string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err, "waiting for %q, got %v", want, seen)
		line = strings.TrimSuffix(line, "\n")
		seen = append(seen, line)
		if line == want {
			return seen
		}
	}
}

func TestBuild_EndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	cfg := testAppConfig(t, writeSchedule(t, time.Now()))
	require.NoError(t, config.Validate(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := Build(ctx, cfg)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- rt.App.Run(ctx) }()

	require.NoError(t, waitForListen(cfg.Control.ListenAddr(), 2*time.Second))
	require.NoError(t, waitForListen(cfg.Admin.ListenAddr, 2*time.Second))
	require.Eventually(t, func() bool {
		return rt.Machine.State() == statemachine.StateRecording
	}, 3*time.Second, 10*time.Millisecond)

	conn, err := net.Dial("tcp", cfg.Control.ListenAddr())
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	reader := bufio.NewReader(conn)

	_, err = conn.Write([]byte("status\r\n"))
	require.NoError(t, err)
	lines := readUntil(t, reader, conn, "CurrentRecording-Name: Evening News")
	assert.Equal(t, "Recorder-Status: Recording", lines[0])
	assert.Equal(t, "CurrentRecording-Id: evening-news", lines[1])

	_, err = conn.Write([]byte("stop\r\n"))
	require.NoError(t, err)
	readUntil(t, reader, conn, "Recorder-Status: Idle")

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + cfg.Admin.ListenAddr + "/readyz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("App.Run did not return after cancel")
	}
}

func TestBuild_UnknownSource(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Recorder.Source = "carrier-pigeon"

	_, err := Build(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown recorder source")
}

func TestBuildSource(t *testing.T) {
	src, watcher, err := buildSource(config.RecorderConfig{Source: config.RecorderSourceNone})
	require.NoError(t, err)
	assert.Equal(t, "none", src.Name())
	assert.Nil(t, watcher)

	src, watcher, err = buildSource(config.RecorderConfig{Source: config.RecorderSourceFile, ScheduleFile: "/tmp/x.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "file", src.Name())
	assert.NotNil(t, watcher)

	src, watcher, err = buildSource(config.RecorderConfig{
		Source:    config.RecorderSourceOpenWebIF,
		OpenWebIF: config.OpenWebIFConfig{BaseURL: "http://127.0.0.1:1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "openwebif", src.Name())
	assert.Nil(t, watcher)
}
