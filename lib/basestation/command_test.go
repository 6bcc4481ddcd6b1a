// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package basestation

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type recordingExecutor struct {
	calls  [][]string
	result CommandResult
	err    error
}

func (e *recordingExecutor) execute(_ context.Context, argv []string) (CommandResult, error) {
	e.calls = append(e.calls, argv)
	return e.result, e.err
}

func TestCommandInterfaceRunsConfiguredCommand(t *testing.T) {
	executor := &recordingExecutor{result: CommandResult{ExitCode: 3, Stderr: "already on"}}
	power := NewCommandInterface(CommandOptions{
		On:      []string{"lighthouse-v1", "--on", "B0:00:00:00:00:01"},
		Off:     []string{"lighthouse-v1", "--off", "B0:00:00:00:00:01"},
		Execute: executor.execute,
	})
	ctx := context.Background()

	if err := power.Action(ctx, On); err != nil {
		t.Fatalf("Action(On) = %v; a non-zero exit is logged, not returned", err)
	}
	if err := power.Action(ctx, Off); err != nil {
		t.Fatalf("Action(Off): %v", err)
	}
	want := [][]string{
		{"lighthouse-v1", "--on", "B0:00:00:00:00:01"},
		{"lighthouse-v1", "--off", "B0:00:00:00:00:01"},
	}
	if !reflect.DeepEqual(executor.calls, want) {
		t.Errorf("calls = %q, want %q", executor.calls, want)
	}
}

func TestCommandInterfaceEmptyCommand(t *testing.T) {
	executor := &recordingExecutor{}
	power := NewCommandInterface(CommandOptions{On: []string{"true"}, Execute: executor.execute})

	if err := power.Action(context.Background(), Off); err != nil {
		t.Fatalf("Action(Off) with no command: %v", err)
	}
	if len(executor.calls) != 0 {
		t.Errorf("executed %q for an unconfigured action", executor.calls)
	}
}

func TestCommandInterfaceDryRun(t *testing.T) {
	executor := &recordingExecutor{}
	power := NewCommandInterface(CommandOptions{On: []string{"true"}, DryRun: true, Execute: executor.execute})

	if err := power.Action(context.Background(), On); err != nil {
		t.Fatalf("Action: %v", err)
	}
	if len(executor.calls) != 0 {
		t.Errorf("dry run executed %q", executor.calls)
	}
}

func TestCommandInterfaceStartFailure(t *testing.T) {
	executor := &recordingExecutor{err: errors.New("executable file not found in $PATH")}
	power := NewCommandInterface(CommandOptions{On: []string{"missing-tool"}, Execute: executor.execute})

	if err := power.Action(context.Background(), On); err == nil {
		t.Fatal("Action succeeded although the command could not start")
	}
}

func TestExecCommand(t *testing.T) {
	result, err := ExecCommand(context.Background(), []string{"sh", "-c", "echo out; echo err >&2; exit 4"})
	if err != nil {
		t.Fatalf("ExecCommand: %v", err)
	}
	if result.ExitCode != 4 || result.Stdout != "out\n" || result.Stderr != "err\n" {
		t.Errorf("result = %+v", result)
	}
}
