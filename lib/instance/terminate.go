// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

const exitPollInterval = 50 * time.Millisecond

// Alive reports whether a process with pid exists. A process owned by
// another user counts as alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// TerminatePrior sends SIGTERM to the daemon recorded in the state file
// at statePath and waits for it to exit or for ctx to end. A missing or
// unreadable state file, a dead pid, or the caller's own pid is not an
// error. Returns the pid that was signalled, or 0.
func TerminatePrior(ctx context.Context, statePath string, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	state, err := Read(statePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("ignoring unreadable state file", "path", statePath, "error", err)
		}
		return 0, nil
	}
	if state.PID == os.Getpid() || !Alive(state.PID) {
		return 0, nil
	}

	logger.Info("terminating prior daemon", "pid", state.PID, "run_id", state.RunID)
	if err := unix.Kill(state.PID, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return 0, nil
		}
		return 0, fmt.Errorf("signalling prior daemon %d: %w", state.PID, err)
	}

	ticker := time.NewTicker(exitPollInterval)
	defer ticker.Stop()
	for Alive(state.PID) {
		select {
		case <-ctx.Done():
			return state.PID, fmt.Errorf("waiting for prior daemon %d to exit: %w", state.PID, ctx.Err())
		case <-ticker.C:
		}
	}
	return state.PID, nil
}
