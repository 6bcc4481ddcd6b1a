// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/lib/control"
	"github.com/vrswitch/vrswitch/lib/version"
)

type powerAction struct {
	name    string
	alias   string
	summary string
	run     func(*control.Controller, context.Context) error
}

var (
	actionOn = powerAction{
		name:    "on",
		alias:   "1",
		summary: "Power base stations on and route audio to the headset",
		run:     (*control.Controller).TurnOn,
	}
	actionOff = powerAction{
		name:    "off",
		alias:   "0",
		summary: "Power base stations off and route audio back",
		run:     (*control.Controller).TurnOff,
	}
)

func powerCommand(action powerAction) *cli.Command {
	var params commonParams
	return &cli.Command{
		Name:    action.name,
		Aliases: []string{action.alias},
		Summary: action.summary,
		Usage:   "vrswitch " + action.name + " [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet(action.name, pflag.ContinueOnError)
			params.addFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			return runPowerAction(ctx, params, action)
		},
	}
}

func runPowerAction(ctx context.Context, params commonParams, action powerAction) error {
	cfg, configPath, err := params.load()
	if err != nil {
		return err
	}
	output, err := openLog(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer output.Close()

	logger := output.Logger.With("run_id", uuid.NewString())
	logger.Info("vrswitch "+action.name,
		"version", version.Short(),
		"config", describeConfigPath(configPath),
		"dry_run", cfg.DryRun)

	controller, err := control.Build(ctx, cfg, control.Dependencies{Logger: logger})
	if err != nil {
		logger.Error("setup failed", "error", err)
		return err
	}
	if err := action.run(controller, ctx); err != nil {
		logger.Error(action.name+" failed", "error", err)
		return err
	}
	return nil
}
