// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/lib/instance"
)

type statusParams struct {
	commonParams
	JSON bool
}

func statusCommand() *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Show whether the daemon is running and its session stage",
		Description: `Print the running daemon's pid, session stage, and log file.

Exits with status 1 when no daemon is running.`,
		Usage: "vrswitch status [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.BoolVar(&params.JSON, "json", false, "print the state file as JSON")
			return flagSet
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			cfg, _, err := params.load()
			if err != nil {
				return err
			}
			return printStatus(os.Stdout, instance.StatePath(cfg.Daemon.StateDirectory), params.JSON, time.Now())
		},
	}
}

// printStatus reports the daemon recorded at statePath. Returns an
// ExitError with code 1 when none is running.
func printStatus(w io.Writer, statePath string, asJSON bool, now time.Time) error {
	state, err := instance.Read(statePath)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(w, "vrswitch daemon is not running")
		return &cli.ExitError{Code: 1}
	}
	if err != nil {
		return err
	}
	if !instance.Alive(state.PID) {
		fmt.Fprintf(w, "vrswitch daemon is not running (stale state file for pid %d at %s)\n", state.PID, statePath)
		return &cli.ExitError{Code: 1}
	}

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(state)
	}

	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "pid:\t%d\n", state.PID)
	fmt.Fprintf(tw, "run id:\t%s\n", state.RunID)
	fmt.Fprintf(tw, "stage:\t%s (for %s)\n", state.Stage, now.Sub(state.Since).Round(time.Second))
	fmt.Fprintf(tw, "started:\t%s\n", state.Started.Format(time.RFC3339))
	fmt.Fprintf(tw, "config:\t%s\n", describeConfigPath(state.ConfigPath))
	if state.LogPath != "" {
		fmt.Fprintf(tw, "log:\t%s\n", state.LogPath)
	}
	return tw.Flush()
}
