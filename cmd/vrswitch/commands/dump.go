// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/pactl"
	"github.com/vrswitch/vrswitch/lib/version"
)

// dumpQueries are the pactl commands whose raw output a bug report needs.
var dumpQueries = [][]string{
	{"info"},
	{"list", "short", "sinks"},
	{"list", "short", "sources"},
	{"list", "short", "clients"},
	{"list", "cards"},
}

func dumpCommand() *cli.Command {
	var params commonParams
	return &cli.Command{
		Name:    "dump",
		Summary: "Write the configuration and raw pactl output to the log",
		Description: `Log the effective configuration and the raw output of the pactl
queries vrswitch relies on, for attaching to a bug report. Nothing is
changed.`,
		Usage: "vrswitch dump [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("dump", pflag.ContinueOnError)
			params.addFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			cfg, configPath, err := params.load()
			if err != nil {
				return err
			}
			output, err := openLog(cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer output.Close()

			if err := runDump(ctx, cfg, configPath, pactl.ExecRunner{}, output.Logger); err != nil {
				return err
			}
			if output.Path != "" {
				fmt.Fprintf(os.Stdout, "dump written to %s\n", output.Path)
			}
			return nil
		},
	}
}

func runDump(ctx context.Context, cfg *config.Config, configPath string, runner pactl.Runner, logger *slog.Logger) error {
	data, err := cfg.Marshal()
	if err != nil {
		return fmt.Errorf("rendering configuration: %w", err)
	}
	logger.Info("debug dump start", "version", version.Info())
	logger.Info("configuration", "path", describeConfigPath(configPath), "yaml", string(data))
	for _, query := range dumpQueries {
		result := runner.Run(ctx, query...)
		logger.Info("pactl output",
			"command", result.Command(),
			"exit_code", result.ExitCode,
			"stdout", result.Stdout,
			"stderr", result.Stderr)
	}
	logger.Info("debug dump end")
	return nil
}
