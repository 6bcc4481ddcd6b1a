// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/logging"
)

// commonParams are the flags every configuration-driven command takes.
type commonParams struct {
	ConfigPath string
	DryRun     bool
}

func (p *commonParams) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.ConfigPath, "config", "",
		"configuration file (default $"+config.EnvironmentVariable+", then "+config.DefaultPath()+")")
	flagSet.BoolVar(&p.DryRun, "dry-run", false,
		"log every change instead of making it (Bluetooth still connects but never writes)")
}

// args reproduces the flags for a re-executed child process.
func (p *commonParams) args() []string {
	var args []string
	if p.ConfigPath != "" {
		args = append(args, "--config", p.ConfigPath)
	}
	if p.DryRun {
		args = append(args, "--dry-run")
	}
	return args
}

// load resolves, loads, and validates the configuration. --dry-run
// overrides the file.
func (p *commonParams) load() (*config.Config, string, error) {
	cfg, path, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, path, err
	}
	if p.DryRun {
		cfg.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, fmt.Errorf("invalid configuration %s:\n%w", describeConfigPath(path), err)
	}
	return cfg, path, nil
}

func describeConfigPath(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}

// openLog sets up the per-run log file when enabled, plus console
// output to console when it is non-nil.
func openLog(cfg *config.Config, console io.Writer) (*logging.Output, error) {
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	options := logging.Options{Console: console}
	if cfg.Log.Enabled {
		options.Directory = cfg.Log.Directory
	}
	return logging.Setup(options)
}
