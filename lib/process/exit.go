// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"io"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run() when the logger may not be set up.
func Fatal(err error) {
	Report(os.Stderr, err)
	os.Exit(1)
}

// Report writes "error: err" to w. Multi-line errors from errors.Join
// keep their line breaks, each line indented under the first.
func Report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %s\n", indent(err.Error()))
}

func indent(message string) string {
	out := make([]byte, 0, len(message))
	for i := 0; i < len(message); i++ {
		out = append(out, message[i])
		if message[i] == '\n' && i+1 < len(message) {
			out = append(out, ' ', ' ')
		}
	}
	return string(out)
}
