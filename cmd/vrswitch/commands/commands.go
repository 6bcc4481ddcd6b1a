// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the vrswitch command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/lib/version"
)

// Root builds and returns the complete vrswitch command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "vrswitch",
		Description: `vrswitch: switch a Linux desktop in and out of VR.

Moves audio streams between the headset and the normal speakers or
microphone, powers Lighthouse base stations on and off, and runs a
daemon that does both automatically when a SteamVR session starts and
ends.`,
		Subcommands: []*cli.Command{
			powerCommand(actionOn),
			powerCommand(actionOff),
			daemonCommand(),
			statusCommand(),
			doctorCommand(),
			dumpCommand(),
			installCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(os.Stdout, "vrswitch %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Start the daemon from the SteamVR launch options",
				Command:     "vrswitch daemon; %command%",
			},
			{
				Description: "Check the configured patterns against this machine",
				Command:     "vrswitch doctor",
			},
			{
				Description: "Preview switching into VR without changing anything",
				Command:     "vrswitch on --dry-run",
			},
		},
	}
}
