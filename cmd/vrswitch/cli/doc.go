// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the vrswitch
// binary.
//
// The central type is [Command], which represents a named subcommand
// with optional aliases, nested [Command.Subcommands], a
// [pflag.FlagSet] factory, and a Run function. The command tree is
// assembled in cmd/vrswitch/commands and dispatched via
// [Command.Execute], which handles flag parsing, subcommand routing,
// and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3). This is
// implemented in suggest.go.
package cli
