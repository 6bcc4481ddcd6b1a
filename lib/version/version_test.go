// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestInfo(t *testing.T) {
	savedCommit, savedDirty, savedTime, savedVersion := GitCommit, GitDirty, BuildTime, Version
	t.Cleanup(func() {
		GitCommit, GitDirty, BuildTime, Version = savedCommit, savedDirty, savedTime, savedVersion
	})

	GitCommit, GitDirty, BuildTime, Version = "abc1234", "false", "2026-03-01T20:00:00Z", "1.2.0"
	if got, want := Info(), "1.2.0 (abc1234, 2026-03-01T20:00:00Z)"; got != want {
		t.Errorf("Info = %q, want %q", got, want)
	}

	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info = %q, want a -dirty commit", got)
	}
	if got := Short(); got != "1.2.0" {
		t.Errorf("Short = %q", got)
	}
	if got := Full(); !strings.Contains(got, runtime.Version()) || !strings.Contains(got, runtime.GOOS) {
		t.Errorf("Full = %q, want Go version and platform", got)
	}
}
