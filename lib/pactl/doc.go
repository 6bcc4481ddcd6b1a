// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package pactl provides a typed interface to a PulseAudio (or
// PipeWire-pulse) server through the pactl command line tool.
//
// The central type is Client. Every query runs a fresh pactl invocation
// and parses its output; nothing is cached between calls, because
// endpoint and connection ids are only meaningful within one listing.
// Queries that exit non-zero return a *CommandError. Mutations
// (move-sink-input, suspend-sink, set-card-profile) return the raw
// Result and leave the decision to the caller.
//
// All invocations go through a Runner. Production code uses ExecRunner,
// which runs pactl with LC_ALL=C so the output is not localized. Tests
// use FakeServer, which scripts responses per command line and records
// every call.
//
// In dry-run mode a Client still runs queries but replaces mutations
// with a logged no-op that reports success.
//
// The stdout of every query is kept in an OutputLog keyed by command
// line. When a mutation fails, the caller dumps the log so the operator
// can see exactly what the server reported.
package pactl
