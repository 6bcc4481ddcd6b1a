// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"time"

	"github.com/vrswitch/vrswitch/lib/clock"
)

// FailurePolicy bounds how often a connection that pactl refused to
// move is tried again.
type FailurePolicy struct {
	// Ceiling is the number of failures after which a connection is
	// never retried. A connection with Count > Ceiling is abandoned.
	Ceiling int

	// Cooldown is the minimum time between a failure and the next
	// attempt.
	Cooldown time.Duration
}

// DefaultFailurePolicy returns a ceiling of 10 and a cooldown of 500ms.
func DefaultFailurePolicy() FailurePolicy {
	return FailurePolicy{Ceiling: 10, Cooldown: 500 * time.Millisecond}
}

// FailureRecord tracks consecutive move failures of one connection.
type FailureRecord struct {
	ConnectionID uint32
	Count        int
	LastFailure  time.Time
}

// prunedAfter is how many consecutive listings a connection id may be
// absent from before its record is dropped.
const prunedAfter = 2

// FailureTracker holds the FailureRecords of one Switcher. It is owned
// by a single goroutine and not safe for concurrent use.
type FailureTracker struct {
	clock   clock.Clock
	policy  FailurePolicy
	records map[uint32]*FailureRecord
	absent  map[uint32]int
}

// NewFailureTracker returns an empty tracker.
func NewFailureTracker(c clock.Clock, policy FailurePolicy) *FailureTracker {
	return &FailureTracker{
		clock:   c,
		policy:  policy,
		records: make(map[uint32]*FailureRecord),
		absent:  make(map[uint32]int),
	}
}

// Get returns the record for id, if any.
func (t *FailureTracker) Get(id uint32) (FailureRecord, bool) {
	record, ok := t.records[id]
	if !ok {
		return FailureRecord{}, false
	}
	return *record, true
}

// RecordFailure creates the record for id with a count of one, or
// increments it, and stamps the current time.
func (t *FailureTracker) RecordFailure(id uint32) FailureRecord {
	record, ok := t.records[id]
	if !ok {
		record = &FailureRecord{ConnectionID: id}
		t.records[id] = record
	}
	record.Count++
	record.LastFailure = t.clock.Now()
	delete(t.absent, id)
	return *record
}

// ShouldRetry reports whether a move of id may be attempted now.
// Connections without a record are always eligible.
func (t *FailureTracker) ShouldRetry(id uint32) bool {
	record, ok := t.records[id]
	if !ok {
		return true
	}
	if record.Count > t.policy.Ceiling {
		return false
	}
	return !t.clock.Now().Before(record.LastFailure.Add(t.policy.Cooldown))
}

// Observe is given the connection ids of every fresh listing. Records
// whose id was missing from the last two listings are dropped, since
// the server has forgotten the connection and may reuse its id.
func (t *FailureTracker) Observe(ids []uint32) {
	present := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		present[id] = true
	}
	for id := range t.records {
		if present[id] {
			delete(t.absent, id)
			continue
		}
		t.absent[id]++
		if t.absent[id] >= prunedAfter {
			delete(t.records, id)
			delete(t.absent, id)
		}
	}
}

// Len returns the number of records held.
func (t *FailureTracker) Len() int {
	return len(t.records)
}
