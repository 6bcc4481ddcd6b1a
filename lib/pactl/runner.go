// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Result is the outcome of one pactl invocation.
type Result struct {
	// Args is the argument list passed to pactl, without the binary
	// name.
	Args []string

	// ExitCode is the process exit status. -1 means the process could
	// not be started; Stderr then holds the reason.
	ExitCode int

	Stdout string
	Stderr string
}

// OK reports whether the invocation exited with status zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Command returns the command line as the operator would type it.
func (r Result) Command() string {
	return "pactl " + strings.Join(r.Args, " ")
}

// Runner executes one pactl invocation and waits for it to exit.
type Runner interface {
	Run(ctx context.Context, args ...string) Result
}

// ExecRunner runs the pactl binary as a child process.
type ExecRunner struct {
	// Binary is the executable to run. Empty means "pactl" from PATH.
	Binary string
}

// Run executes pactl with the given arguments. The child inherits the
// environment with LC_ALL=C so that labels like "Default Sink:" are
// not translated.
func (r ExecRunner) Run(ctx context.Context, args ...string) Result {
	binary := r.Binary
	if binary == "" {
		binary = "pactl"
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := Result{Args: args}
	err := cmd.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	var exitError *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitError):
		result.ExitCode = exitError.ExitCode()
	default:
		result.ExitCode = -1
		result.Stderr = fmt.Sprintf("starting %s: %v", binary, err)
	}
	return result
}

// CommandError reports a query whose pactl invocation failed.
type CommandError struct {
	Result Result
}

func (e *CommandError) Error() string {
	stderr := strings.TrimSpace(e.Result.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.Result.Command(), e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d (%s)", e.Result.Command(), e.Result.ExitCode, stderr)
}
