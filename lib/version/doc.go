// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the vrswitch binary.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string (set manually for releases)
//
// When none are injected, as in development builds and tests, the
// values fall back to the module's embedded build information where
// the toolchain recorded it.
package version
