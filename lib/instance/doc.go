// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package instance keeps a single lifecycle daemon running per user.
//
// A daemon records itself in a [State] file inside the state
// directory. The file is written atomically (temporary file, fsync,
// rename, fsync of the parent directory) so the status command never
// reads a partial record. A new daemon first asks any prior instance
// named in the state file to exit with [TerminatePrior], then takes an
// exclusive lock on the lock file with [Acquire]. The lock, not the
// state file, is authoritative: a stale state file left by a crashed
// daemon is simply overwritten.
//
// [Detach] starts the daemon in the background as a new session leader
// with its standard streams on /dev/null.
package instance
