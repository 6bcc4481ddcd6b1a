// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the vrswitch entrypoint helpers for output that
// happens before the structured logger exists or after it is gone:
// reporting a fatal error to stderr and exiting with a status code.
package process
