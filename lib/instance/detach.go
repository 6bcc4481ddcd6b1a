// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Detach starts executable with args as a new session leader, with its
// standard streams on /dev/null, and returns without waiting for it.
// Returns the child's pid.
func Detach(executable string, args []string, environment []string) (int, error) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", os.DevNull, err)
	}
	defer devNull.Close()

	command := exec.Command(executable, args...)
	command.Env = environment
	command.Stdin = devNull
	command.Stdout = devNull
	command.Stderr = devNull
	command.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := command.Start(); err != nil {
		return 0, fmt.Errorf("starting %s: %w", executable, err)
	}
	pid := command.Process.Pid
	if err := command.Process.Release(); err != nil {
		return pid, fmt.Errorf("releasing detached process %d: %w", pid, err)
	}
	return pid, nil
}
