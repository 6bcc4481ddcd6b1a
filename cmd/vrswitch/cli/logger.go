// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"github.com/vrswitch/vrswitch/lib/logging"
)

// NewCommandLogger returns the console logger handed to every command:
// info level on stderr, text on a terminal and JSON otherwise. Commands
// that also write a log file build their own through lib/logging.
func NewCommandLogger() *slog.Logger {
	return slog.New(logging.ConsoleHandler(os.Stderr, slog.LevelInfo))
}
