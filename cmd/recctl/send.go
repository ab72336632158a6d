// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const sendLineTerminator = "\r\n"

func newSendCmd() *cobra.Command {
	var (
		addr    string
		timeout time.Duration
		idle    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send <command>",
		Short: "Send one console command and print the response",
		Long: `Send one console command to a running recctl and print every response
line until the connection has been quiet for --idle.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendCommand(cmd.Context(), cmd.OutOrStdout(), addr, args[0], timeout, idle)
		},
	}
	cmd.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:3000", "control endpoint address")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 5*time.Second, "dial and overall deadline")
	cmd.Flags().DurationVar(&idle, "idle", 500*time.Millisecond, "stop reading after this much silence")
	return cmd
}

func sendCommand(ctx context.Context, out io.Writer, addr, command string, timeout, idle time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	deadline, _ := ctx.Deadline()
	if err := conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if _, err := io.WriteString(conn, command+sendLineTerminator); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	sc := bufio.NewScanner(conn)
	for {
		readBy := time.Now().Add(idle)
		if readBy.After(deadline) {
			readBy = deadline
		}
		if err := conn.SetReadDeadline(readBy); err != nil {
			return err
		}
		if !sc.Scan() {
			break
		}
		if _, err := fmt.Fprintln(out, sc.Text()); err != nil {
			return err
		}
	}

	err = sc.Err()
	var ne net.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ne) && ne.Timeout(), errors.Is(err, os.ErrDeadlineExceeded):
		return nil
	default:
		return fmt.Errorf("read: %w", err)
	}
}
