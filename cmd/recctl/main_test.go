// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "recctl "), out)
}

func TestConfigInitThenValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recctl.yaml")

	out, err := execute(t, "config", "init", "--out", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "config", "init", "--out", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "config", "init", "--out", path, "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestConfigInitRequiresOut(t *testing.T) {
	_, err := execute(t, "config", "init")
	assert.ErrorContains(t, err, "--out is required")
}

func TestConfigValidateReportsControlSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("control:\n  maxWorkerThreads: 0\n"), 0o600))

	_, err := execute(t, "config", "validate", "--config", path)
	assert.ErrorContains(t, err, "control section")
}

func TestConfigValidateRejectsUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bogus: true\n"), 0o600))

	_, err := execute(t, "config", "validate", "--config", path)
	assert.Error(t, err)
}

func TestConfigDumpRedactsPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recctl.yaml")
	body := "recorder:\n  source: openwebif\n  openWebIF:\n    baseURL: http://receiver.local\n    password: hunter2\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	out, err := execute(t, "config", "dump", "--config", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "***")
}

func TestSendCommand(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	received := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		received <- line
		_, _ = conn.Write([]byte("Recorder-Status: Idle\nCurrentRecording-Id: x\n"))
		time.Sleep(300 * time.Millisecond)
	}()

	var out bytes.Buffer
	err = sendCommand(context.Background(), &out, ln.Addr().String(), "Status", 2*time.Second, 100*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, "Status\r\n", <-received)
	assert.Equal(t, "Recorder-Status: Idle\nCurrentRecording-Id: x\n", out.String())
}

func TestSendCommandDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = execute(t, "send", "Status", "--addr", addr, "--timeout", "500ms")
	assert.ErrorContains(t, err, "dial")
}
