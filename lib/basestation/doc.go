// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package basestation switches SteamVR Lighthouse base stations on and
// off.
//
// Two PowerInterface implementations exist:
//
//   - LighthouseInterface talks to version 2 base stations directly over
//     Bluetooth Low Energy: it scans for their manufacturer
//     advertisement, connects to each one, and writes the power byte.
//     Radio access goes through the Radio interface; BluezRadio is the
//     production implementation.
//   - CommandInterface runs a user-configured command for each action,
//     for version 1 base stations or any other tool the user prefers.
//
// Bluetooth is unreliable enough that both the scan and the power write
// are retried a configurable number of times with a short pause.
//
// In dry-run mode the command interface does not execute anything and
// the Lighthouse interface connects to each base station but never
// writes.
package basestation
