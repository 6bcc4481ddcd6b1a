// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli/doctor"
	"github.com/vrswitch/vrswitch/lib/audio"
	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/logging"
	"github.com/vrswitch/vrswitch/lib/pactl"
)

func doctorCommand() *cli.Command {
	var params commonParams
	return &cli.Command{
		Name:    "doctor",
		Aliases: []string{"config-help", "c"},
		Summary: "Check the configured patterns against this machine",
		Description: `Check every configured regular expression against the audio endpoints,
card ports, and clients the audio server reports right now, and check
that the base station tooling is available.

Each endpoint pattern must match exactly one name. Failed checks list
the candidate names, so the pattern can be adjusted and checked again.
Run this while SteamVR is running: the headset's card port only shows
up when the headset is powered.`,
		Usage: "vrswitch doctor [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("doctor", pflag.ContinueOnError)
			params.addFlags(flagSet)
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			cfg, configPath, err := params.load()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			checker := &doctorChecker{
				config:     cfg,
				configPath: configPath,
				directory:  pactl.NewClient(pactl.ExecRunner{}, pactl.Options{Logger: logger}),
				lookPath:   exec.LookPath,
				sysRoot:    "/sys",
			}
			return doctor.PrintChecklist(os.Stdout, checker.run(ctx), logging.IsTerminal(os.Stdout))
		},
	}
}

// doctorDirectory is the part of pactl.Client the checks query.
type doctorDirectory interface {
	ListEndpoints(ctx context.Context, role pactl.Role) ([]pactl.Endpoint, error)
	DefaultEndpointName(ctx context.Context, role pactl.Role) (string, error)
	ListCards(ctx context.Context) ([]pactl.Card, error)
	ListClients(ctx context.Context) ([]pactl.ClientInfo, error)
}

type doctorChecker struct {
	config     *config.Config
	configPath string
	directory  doctorDirectory
	lookPath   func(string) (string, error)

	// sysRoot is where /sys is mounted, for the Bluetooth adapter check.
	sysRoot string
}

func (c *doctorChecker) run(ctx context.Context) []doctor.Result {
	results := []doctor.Result{doctor.Pass("configuration", describeConfigPath(c.configPath))}
	if c.config.DryRun {
		results = append(results, doctor.Warn("dry run", "enabled: nothing will be changed").WithHint("dry_run"))
	}
	results = append(results, c.checkAudio(ctx)...)
	results = append(results, c.checkBasestations()...)
	return results
}

// --- Audio ---

func (c *doctorChecker) checkAudio(ctx context.Context) []doctor.Result {
	audioConfig := c.config.Audio
	if !audioConfig.Enabled {
		return []doctor.Result{doctor.Skip("audio", "disabled")}
	}

	path, err := c.lookPath("pactl")
	if err != nil {
		return []doctor.Result{
			doctor.Fail("pactl", "not found in PATH").WithHint("install pulseaudio-utils or the pipewire-pulse tools"),
			doctor.Skip("audio checks", "pactl is required"),
		}
	}
	results := []doctor.Result{doctor.Pass("pactl", path)}

	roles := []struct {
		enabled    bool
		role       pactl.Role
		vr, normal string
	}{
		{audioConfig.ChangeSink, pactl.Output, audioConfig.VRSinkRegex, audioConfig.NormalSinkRegex},
		{audioConfig.ChangeSource, pactl.Input, audioConfig.VRSourceRegex, audioConfig.NormalSourceRegex},
	}
	for _, role := range roles {
		if !role.enabled {
			results = append(results, doctor.Skip(role.role.String()+"s", "switching disabled").
				WithHint("audio.change_"+role.role.String()))
			continue
		}
		results = append(results, c.checkRole(ctx, role.role, role.vr, role.normal)...)
	}

	if audioConfig.SetCardPort {
		results = append(results, c.checkPorts(ctx)...)
	}
	results = append(results, c.checkClients(ctx)...)
	return results
}

func (c *doctorChecker) checkRole(ctx context.Context, role pactl.Role, vrPattern, normalPattern string) []doctor.Result {
	endpoints, err := c.directory.ListEndpoints(ctx, role)
	if err != nil {
		return []doctor.Result{doctor.Fail(role.String()+"s", err.Error())}
	}
	names := make([]string, len(endpoints))
	for i, endpoint := range endpoints {
		names[i] = endpoint.Name
	}

	vrKey := "audio.vr_" + role.String() + "_regex"
	normalKey := "audio.normal_" + role.String() + "_regex"

	results := []doctor.Result{c.checkEndpointPattern("vr "+role.String(), vrKey, vrPattern, endpoints, names)}
	if normalPattern != "" {
		results = append(results, c.checkEndpointPattern("normal "+role.String(), normalKey, normalPattern, endpoints, names))
		return results
	}

	name := "normal " + role.String()
	defaultName, err := c.directory.DefaultEndpointName(ctx, role)
	switch {
	case err != nil:
		results = append(results, doctor.Fail(name, err.Error()))
	case defaultName == "" || !slices.Contains(names, defaultName):
		results = append(results, doctor.Fail(name, fmt.Sprintf("no pattern and the default %s %q is not listed", role, defaultName)).
			WithHint(normalKey).WithDetails(names...))
	default:
		results = append(results, doctor.Pass(name, fmt.Sprintf("server default %s", defaultName)))
	}
	return results
}

func (c *doctorChecker) checkEndpointPattern(name, key, pattern string, endpoints []pactl.Endpoint, names []string) doctor.Result {
	if pattern == "" {
		return doctor.Fail(name, "no pattern configured").WithHint(key).WithDetails(names...)
	}
	compiled, err := audio.CompilePattern(pattern)
	if err != nil {
		return doctor.Fail(name, err.Error()).WithHint(key)
	}
	endpoint, found, err := audio.FindEndpoint(endpoints, compiled, name)
	switch {
	case errors.Is(err, audio.ErrAmbiguousMatch):
		return doctor.Fail(name, fmt.Sprintf("%q matches %s", pattern, strings.Join(matching(names, compiled), ", "))).
			WithHint("narrow " + key).WithDetails(names...)
	case err != nil:
		return doctor.Fail(name, err.Error())
	case !found:
		return doctor.Fail(name, fmt.Sprintf("%q matches nothing", pattern)).WithHint(key).WithDetails(names...)
	default:
		return doctor.Pass(name, endpoint.Name)
	}
}

func (c *doctorChecker) checkPorts(ctx context.Context) []doctor.Result {
	cards, err := c.directory.ListCards(ctx)
	if err != nil {
		return []doctor.Result{doctor.Fail("card ports", err.Error())}
	}
	var products []string
	for _, card := range cards {
		for _, port := range card.Ports {
			if port.ProductName != "" {
				products = append(products, port.ProductName)
			}
		}
	}

	checks := []struct {
		name, key, pattern string
	}{
		{"vr card port", "audio.card_port_vr_product_name_regex", c.config.Audio.CardPortVRProductNameRegex},
		{"normal card port", "audio.card_port_normal_product_name_regex", c.config.Audio.CardPortNormalProductNameRegex},
	}
	var results []doctor.Result
	for _, check := range checks {
		if check.pattern == "" {
			results = append(results, doctor.Skip(check.name, "no pattern: the port is rescanned instead"))
			continue
		}
		compiled, err := audio.CompilePattern(check.pattern)
		if err != nil {
			results = append(results, doctor.Fail(check.name, err.Error()).WithHint(check.key))
			continue
		}
		port, found := audio.FindPort(cards, compiled)
		matches := matching(products, compiled)
		switch {
		case !found:
			// The headset's port is absent while SteamVR is not running.
			results = append(results, doctor.Warn(check.name, fmt.Sprintf("%q matches no product name", check.pattern)).
				WithHint(check.key).WithDetails(products...))
		case len(matches) > 1:
			results = append(results, doctor.Warn(check.name,
				fmt.Sprintf("%q matches %d ports; the first, %s on %s, is used", check.pattern, len(matches), port.Name, port.Card)).
				WithHint("narrow "+check.key).WithDetails(products...))
		default:
			results = append(results, doctor.Pass(check.name, fmt.Sprintf("%s (%s on %s)", port.ProductName, port.Name, port.Card)))
		}
	}
	return results
}

func (c *doctorChecker) checkClients(ctx context.Context) []doctor.Result {
	patterns := c.config.Audio.ExcludedClientsRegexes
	if len(patterns) == 0 {
		return []doctor.Result{doctor.Skip("excluded clients", "none configured")}
	}
	clients, err := c.directory.ListClients(ctx)
	if err != nil {
		return []doctor.Result{doctor.Fail("excluded clients", err.Error())}
	}
	var names []string
	for _, client := range clients {
		names = append(names, client.Name)
	}

	compiled, err := audio.CompilePatterns(patterns)
	if err != nil {
		return []doctor.Result{doctor.Fail("excluded clients", err.Error()).WithHint("audio.excluded_clients_regexes")}
	}
	var excluded []string
	for _, name := range names {
		for _, pattern := range compiled {
			if pattern.MatchString(name) {
				excluded = append(excluded, name)
				break
			}
		}
	}
	if len(excluded) == 0 {
		return []doctor.Result{doctor.Warn("excluded clients", "no connected client matches").
			WithHint("audio.excluded_clients_regexes").WithDetails(names...)}
	}
	return []doctor.Result{doctor.Pass("excluded clients", strings.Join(excluded, ", "))}
}

// --- Base stations ---

func (c *doctorChecker) checkBasestations() []doctor.Result {
	basestation := c.config.Basestation
	if !basestation.Enabled {
		return []doctor.Result{doctor.Skip("base stations", "disabled")}
	}

	if basestation.Type == config.BasestationCommand {
		var results []doctor.Result
		for _, command := range []struct {
			name string
			argv []string
		}{
			{"base station on command", basestation.Commands.On},
			{"base station off command", basestation.Commands.Off},
		} {
			if len(command.argv) == 0 {
				results = append(results, doctor.Warn(command.name, "not configured"))
				continue
			}
			path, err := c.lookPath(command.argv[0])
			if err != nil {
				results = append(results, doctor.Fail(command.name, fmt.Sprintf("%s not found", command.argv[0])))
				continue
			}
			results = append(results, doctor.Pass(command.name, path))
		}
		return results
	}

	adapter := filepath.Join(c.sysRoot, "class", "bluetooth", basestation.BluetoothInterface)
	if _, err := os.Stat(adapter); err != nil {
		return []doctor.Result{doctor.Fail("bluetooth adapter", fmt.Sprintf("%s not present", basestation.BluetoothInterface)).
			WithHint("basestation.bluetooth_interface")}
	}
	return []doctor.Result{doctor.Pass("bluetooth adapter", basestation.BluetoothInterface)}
}

func matching(names []string, pattern *regexp.Regexp) []string {
	var matches []string
	for _, name := range names {
		if pattern.MatchString(name) {
			matches = append(matches, name)
		}
	}
	return matches
}
