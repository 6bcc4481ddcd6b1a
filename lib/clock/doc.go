// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that the session
// daemon's timeouts and the audio rescan pause can be tested without
// waiting on the wall clock.
//
// Production code holds a Clock field and is given Real():
//
//	d := session.New(session.Config{Clock: clock.Real(), ...})
//
// Tests use Fake(), which only moves when Advance is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	go func() { c.Sleep(10 * time.Second); close(done) }()
//	c.WaitForTimers(1)
//	c.Advance(10 * time.Second)
//
// WaitForTimers closes the race between a goroutine registering a sleep
// and the test advancing past it.
package clock
