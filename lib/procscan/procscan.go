// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package procscan answers "is a process with this command name
// running?" by comparing process names the way ps -C does.
package procscan

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v3/process"
)

// commLength is the kernel's TASK_COMM_LEN minus the terminating NUL.
// Longer executable names are truncated to this many bytes in comm.
const commLength = 15

// Lister enumerates processes and their names.
type Lister interface {
	PIDs(ctx context.Context) ([]int32, error)

	// Name returns the command name of pid. An error means the process
	// could not be inspected, usually because it has exited.
	Name(ctx context.Context, pid int32) (string, error)
}

// SystemLister reads the process table of the running system.
type SystemLister struct{}

// PIDs implements Lister.
func (SystemLister) PIDs(ctx context.Context) ([]int32, error) {
	return process.PidsWithContext(ctx)
}

// Name implements Lister.
func (SystemLister) Name(ctx context.Context, pid int32) (string, error) {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return "", err
	}
	return proc.NameWithContext(ctx)
}

// Scanner looks for processes by command name.
type Scanner struct {
	name   string
	lister Lister
}

// New returns a Scanner for processes named name on this system.
func New(name string) *Scanner {
	return NewWithLister(SystemLister{}, name)
}

// NewWithLister returns a Scanner reading processes from lister.
func NewWithLister(lister Lister, name string) *Scanner {
	return &Scanner{name: truncate(name), lister: lister}
}

// Name returns the command name being matched, after truncation.
func (s *Scanner) Name() string {
	return s.name
}

// Running reports whether at least one matching process exists.
func (s *Scanner) Running(ctx context.Context) (bool, error) {
	pids, err := s.scan(ctx, true)
	if err != nil {
		return false, err
	}
	return len(pids) > 0, nil
}

// PIDs returns every matching process id in ascending order.
func (s *Scanner) PIDs(ctx context.Context) ([]int, error) {
	return s.scan(ctx, false)
}

func (s *Scanner) scan(ctx context.Context, firstOnly bool) ([]int, error) {
	all, err := s.lister.PIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading process table: %w", err)
	}

	var pids []int
	for _, pid := range all {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Processes exit between listing and inspection; that is not
		// an error.
		name, err := s.lister.Name(ctx, pid)
		if err != nil || truncate(name) != s.name {
			continue
		}
		pids = append(pids, int(pid))
		if firstOnly {
			break
		}
	}
	sort.Ints(pids)
	return pids, nil
}

// truncate cuts name to the comm length. Some listers report the full
// executable name for long names, so both sides are truncated.
func truncate(name string) string {
	if len(name) > commLength {
		return name[:commLength]
	}
	return name
}
