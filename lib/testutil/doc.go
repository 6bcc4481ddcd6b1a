// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for vrswitch packages.
//
// [RequireReceive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) for tests that wait on a goroutine
// driven by lib/clock.Fake, so a broken test fails instead of hanging.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
