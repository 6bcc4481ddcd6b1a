// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/lib/instance"
)

func TestPrintStatusRunning(t *testing.T) {
	statePath := instance.StatePath(t.TempDir())
	since := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	err := instance.Write(statePath, instance.State{
		PID:     os.Getpid(),
		RunID:   "run-1",
		Stage:   "during_session",
		Since:   since,
		Started: since.Add(-time.Minute),
		LogPath: "/tmp/vrswitch/log/2026-03-01_19-59-00.log",
	})
	if err != nil {
		t.Fatal(err)
	}

	var buffer bytes.Buffer
	if err := printStatus(&buffer, statePath, false, since.Add(90*time.Second)); err != nil {
		t.Fatalf("printStatus: %v", err)
	}
	output := buffer.String()
	for _, want := range []string{"run-1", "during_session (for 1m30s)", "(defaults)", "2026-03-01_19-59-00.log"} {
		if !strings.Contains(output, want) {
			t.Errorf("status output missing %q:\n%s", want, output)
		}
	}

	buffer.Reset()
	if err := printStatus(&buffer, statePath, true, since); err != nil {
		t.Fatalf("printStatus --json: %v", err)
	}
	if !strings.Contains(buffer.String(), `"stage": "during_session"`) {
		t.Errorf("json output = %s", buffer.String())
	}
}

func TestPrintStatusNotRunning(t *testing.T) {
	directory := t.TempDir()
	var buffer bytes.Buffer
	err := printStatus(&buffer, instance.StatePath(directory), false, time.Now())
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Fatalf("printStatus error = %v, want ExitError 1", err)
	}
	if !strings.Contains(buffer.String(), "not running") {
		t.Errorf("output = %q", buffer.String())
	}

	command := exec.Command("true")
	if err := command.Run(); err != nil {
		t.Skipf("cannot run true: %v", err)
	}
	statePath := instance.StatePath(directory)
	if err := instance.Write(statePath, instance.State{PID: command.Process.Pid}); err != nil {
		t.Fatal(err)
	}
	buffer.Reset()
	if err := printStatus(&buffer, statePath, false, time.Now()); !errors.As(err, &exitError) {
		t.Fatalf("stale state: error = %v, want ExitError", err)
	}
	if !strings.Contains(buffer.String(), "stale state file") {
		t.Errorf("output = %q", buffer.String())
	}
}
