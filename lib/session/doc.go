// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package session drives the VR session lifecycle.
//
// A Daemon polls for the VR compositor process once per tick and moves
// through four stages:
//
//	STARTUP ──TurnOn──▶ BEFORE_SESSION ──process seen──▶ DURING_SESSION
//	                         │                              │    ▲
//	              not seen within WaitBeforeStart     gone  │    │ back
//	                         ▼                              ▼    │
//	                   TurnOff, exit  ◀──WaitAfterQuit── AFTER_SESSION
//
// While DURING_SESSION, every tick calls Iterate to pull streams that
// the audio server created or moved back onto the headset. A process
// that disappears and reappears inside the grace period is a flap, not
// a session end, and does not turn anything off.
//
// All work runs on the goroutine that calls Run. Each tick completes
// before the wait for the next one starts. Cancelling the context stops
// the loop without calling TurnOff, so a SIGTERM from a newer instance
// leaves the hardware as it is for that instance to manage.
package session
