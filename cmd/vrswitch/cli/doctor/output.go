// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	skipStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	nameStyle   = lipgloss.NewStyle().Width(32)
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(9)
)

func statusLabel(status Status, styled bool) string {
	label := fmt.Sprintf("[%-4s]", strings.ToUpper(string(status)))
	if !styled {
		return label
	}
	switch status {
	case StatusPass:
		return passStyle.Render(label)
	case StatusFail:
		return failStyle.Render(label)
	case StatusWarn:
		return warnStyle.Render(label)
	default:
		return skipStyle.Render(label)
	}
}

// PrintChecklist writes check results as a checklist. styled enables
// colors and should be true only for terminals. Returns an ExitError
// with code 1 when any check failed.
func PrintChecklist(w io.Writer, results []Result, styled bool) error {
	for _, result := range results {
		name := result.Name
		if styled {
			name = nameStyle.Render(name)
		} else {
			name = fmt.Sprintf("%-32s", name)
		}
		fmt.Fprintf(w, "%s  %s  %s\n", statusLabel(result.Status, styled), name, result.Message)

		var extra []string
		extra = append(extra, result.Details...)
		if result.Hint != "" && (result.Status == StatusFail || result.Status == StatusWarn) {
			extra = append(extra, "hint: "+result.Hint)
		}
		for _, line := range extra {
			if styled {
				fmt.Fprintln(w, detailStyle.Render(line))
			} else {
				fmt.Fprintf(w, "         %s\n", line)
			}
		}
	}

	fmt.Fprintln(w)
	if AnyFailed(results) {
		fmt.Fprintln(w, "Some checks failed.")
		return &cli.ExitError{Code: 1}
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}
