// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package basestation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CommandResult is the outcome of one configured command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs argv and waits for it to exit. The error is non-nil
// only when the process could not be started.
type Executor func(ctx context.Context, argv []string) (CommandResult, error)

// ExecCommand is the production Executor.
func ExecCommand(ctx context.Context, argv []string) (CommandResult, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	var exitError *exec.ExitError
	if errors.As(err, &exitError) {
		result.ExitCode = exitError.ExitCode()
		return result, nil
	}
	if err != nil {
		return result, fmt.Errorf("running %s: %w", argv[0], err)
	}
	return result, nil
}

// CommandInterface runs a configured command per action. An empty
// command means nothing to do for that action.
type CommandInterface struct {
	on, off []string
	dryRun  bool
	execute Executor
	logger  *slog.Logger
}

// CommandOptions configures a CommandInterface.
type CommandOptions struct {
	On     []string
	Off    []string
	DryRun bool

	// Execute defaults to ExecCommand.
	Execute Executor
	Logger  *slog.Logger
}

// NewCommandInterface returns a CommandInterface.
func NewCommandInterface(options CommandOptions) *CommandInterface {
	execute := options.Execute
	if execute == nil {
		execute = ExecCommand
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &CommandInterface{
		on:      options.On,
		off:     options.Off,
		dryRun:  options.DryRun,
		execute: execute,
		logger:  logger,
	}
}

// Action runs the command for action. A non-zero exit status is
// logged, not returned; only a command that cannot be started is an
// error.
func (c *CommandInterface) Action(ctx context.Context, action Action) error {
	argv := c.off
	if action == On {
		argv = c.on
	}
	if len(argv) == 0 {
		c.logger.Info("no base station command configured, nothing to do", "action", action.String())
		return nil
	}

	command := strings.Join(argv, " ")
	if c.dryRun {
		c.logger.Warn("dry run, skipping base station command", "action", action.String(), "command", command)
		return nil
	}

	c.logger.Info("executing base station command", "action", action.String(), "command", command)
	result, err := c.execute(ctx, argv)
	if err != nil {
		return fmt.Errorf("base station %s command: %w", action, err)
	}
	c.logger.Info("base station command finished",
		"exit_code", result.ExitCode, "stdout", result.Stdout, "stderr", result.Stderr)
	return nil
}
