// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"context"
	"strings"
	"sync"
)

// FakeServer is a scripted Runner for tests. Responses are registered
// per command line (the pactl arguments joined by spaces). A command
// matches the longest registered key that equals it or is a word prefix
// of it, so "move-sink-input 7" scripts the move of connection 7 to
// any endpoint. Commands without a registered response succeed with
// empty output.
//
// Every call is recorded in order. Safe for concurrent use.
type FakeServer struct {
	mu        sync.Mutex
	responses map[string]Result
	calls     []string
}

// NewFakeServer returns a FakeServer with no scripted responses.
func NewFakeServer() *FakeServer {
	return &FakeServer{responses: make(map[string]Result)}
}

// SetOutput scripts command to exit zero with stdout.
func (s *FakeServer) SetOutput(command, stdout string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[command] = Result{Stdout: stdout}
}

// SetFailure scripts command to exit with exitCode and stderr.
func (s *FakeServer) SetFailure(command string, exitCode int, stderr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[command] = Result{ExitCode: exitCode, Stderr: stderr}
}

// Clear removes the scripted response for command.
func (s *FakeServer) Clear(command string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.responses, command)
}

// Run implements Runner.
func (s *FakeServer) Run(_ context.Context, args ...string) Result {
	command := strings.Join(args, " ")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, command)

	best := ""
	found := false
	for key := range s.responses {
		if key != command && !strings.HasPrefix(command, key+" ") {
			continue
		}
		if !found || len(key) > len(best) {
			best = key
			found = true
		}
	}

	result := Result{}
	if found {
		result = s.responses[best]
	}
	result.Args = append([]string(nil), args...)
	return result
}

// Calls returns every command line run so far, in order.
func (s *FakeServer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CallsWithPrefix returns the recorded command lines whose first words
// are prefix.
func (s *FakeServer) CallsWithPrefix(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []string
	for _, call := range s.calls {
		if call == prefix || strings.HasPrefix(call, prefix+" ") {
			matched = append(matched, call)
		}
	}
	return matched
}

// ResetCalls forgets the recorded calls but keeps the scripted
// responses.
func (s *FakeServer) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
}
