// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/pactl"
)

func TestRunDump(t *testing.T) {
	server := pactl.NewFakeServer()
	server.SetOutput("list short sinks", "0\tspeakers\tm\tx\tIDLE\n")
	server.SetFailure("list cards", 1, "Connection failure")

	var buffer bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buffer, nil))
	if err := runDump(context.Background(), config.Default(), "", server, logger); err != nil {
		t.Fatalf("runDump: %v", err)
	}

	calls := server.Calls()
	if len(calls) != len(dumpQueries) {
		t.Errorf("ran %q, want %d queries", calls, len(dumpQueries))
	}
	output := buffer.String()
	for _, want := range []string{
		"debug dump start",
		"vr_sink_regex",
		`command="pactl list short sinks"`,
		"speakers",
		"exit_code=1",
		"Connection failure",
		"debug dump end",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("dump log missing %q:\n%s", want, output)
		}
	}
}
