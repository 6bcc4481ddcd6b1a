// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSetupFanOut(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "log")
	var console bytes.Buffer
	started := time.Date(2026, 3, 1, 20, 15, 7, 0, time.Local)

	output, err := Setup(Options{Directory: directory, Console: &console, Started: started})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	logger := output.Logger.With("run_id", "abc")
	logger.Debug("detail", "connection", 5)
	logger.Info("switched", "endpoint", "hdmi")
	if err := output.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	wantPath := filepath.Join(directory, "2026-03-01_20-15-07.log")
	if output.Path != wantPath {
		t.Errorf("Path = %q, want %q", output.Path, wantPath)
	}
	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	file := string(data)
	for _, want := range []string{"msg=detail", "msg=switched", "run_id=abc", "connection=5"} {
		if !strings.Contains(file, want) {
			t.Errorf("log file missing %q:\n%s", want, file)
		}
	}

	// A bytes.Buffer is not a terminal, so the console gets JSON at info.
	lines := strings.Split(strings.TrimSpace(console.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("console lines = %q, want one info record", lines)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("console output is not JSON: %v", err)
	}
	if record["msg"] != "switched" || record["run_id"] != "abc" {
		t.Errorf("console record = %v", record)
	}
}

func TestSetupLatestSymlink(t *testing.T) {
	directory := t.TempDir()
	first := time.Date(2026, 3, 1, 20, 0, 0, 0, time.Local)
	for _, started := range []time.Time{first, first.Add(time.Hour)} {
		output, err := Setup(Options{Directory: directory, Started: started})
		if err != nil {
			t.Fatalf("Setup: %v", err)
		}
		output.Close()
	}
	target, err := os.Readlink(filepath.Join(directory, LatestName))
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if target != "2026-03-01_21-00-00.log" {
		t.Errorf("latest.log -> %q, want the second run", target)
	}
}

func TestSetupWithoutOutputs(t *testing.T) {
	output, err := Setup(Options{})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if output.Path != "" {
		t.Errorf("Path = %q, want empty", output.Path)
	}
	output.Logger.Info("dropped")
	if err := output.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
	file, err := os.CreateTemp(t.TempDir(), "plain")
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	if IsTerminal(file) {
		t.Error("a regular file is not a terminal")
	}
}
