// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"log/slog"
	"sync"
)

// OutputLog keeps the most recent stdout of every query, keyed by the
// command line that produced it. Safe for concurrent use.
type OutputLog struct {
	mu      sync.Mutex
	order   []string
	outputs map[string]string
}

// NewOutputLog returns an empty OutputLog.
func NewOutputLog() *OutputLog {
	return &OutputLog{outputs: make(map[string]string)}
}

// Add records stdout for command and reports whether this is the first
// output seen for that command.
func (l *OutputLog) Add(command, stdout string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, seen := l.outputs[command]
	if !seen {
		l.order = append(l.order, command)
	}
	l.outputs[command] = stdout
	return !seen
}

// Get returns the last output recorded for command.
func (l *OutputLog) Get(command string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	stdout, ok := l.outputs[command]
	return stdout, ok
}

// Dump logs the most recent output of every recorded command at debug
// level, in first-seen order.
func (l *OutputLog) Dump(logger *slog.Logger) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, command := range l.order {
		logger.Debug("most recent pactl output", "command", command, "stdout", l.outputs[command])
	}
}
