// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor provides the result types and checklist output for
// the vrswitch doctor command.
//
//   - [Result] type with status, message, and an optional hint
//   - Constructors: [Pass], [Fail], [Warn], [Skip]
//   - [PrintChecklist] for human-readable output, styled with lipgloss
//     when writing to a terminal
//
// The checks themselves (which endpoints to match, which commands to
// probe) live in the doctor command.
package doctor
