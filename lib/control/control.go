// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package control turns a VR setup on and off as a whole: base station
// power and audio routing together. It also builds those pieces from a
// loaded configuration.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vrswitch/vrswitch/lib/audio"
	"github.com/vrswitch/vrswitch/lib/basestation"
	"github.com/vrswitch/vrswitch/lib/clock"
	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/pactl"
)

// Controller performs the on, off, and iterate actions. Either part may
// be nil when disabled in the configuration.
type Controller struct {
	power  basestation.PowerInterface
	router *audio.Router
	logger *slog.Logger
}

// New returns a Controller. power and router may be nil.
func New(power basestation.PowerInterface, router *audio.Router, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{power: power, router: router, logger: logger}
}

// TurnOn powers the base stations on and routes audio to the headset.
// A power failure does not prevent the audio switch.
func (c *Controller) TurnOn(ctx context.Context) error {
	c.logger.Info("turning on")
	var errs []error
	if c.power != nil {
		if err := c.power.Action(ctx, basestation.On); err != nil {
			errs = append(errs, fmt.Errorf("base stations: %w", err))
		}
	}
	if c.router != nil {
		if err := c.router.SwitchToVR(ctx); err != nil {
			errs = append(errs, fmt.Errorf("audio: %w", err))
		}
	}
	return errors.Join(errs...)
}

// TurnOff powers the base stations off and routes audio back to the
// normal endpoints.
func (c *Controller) TurnOff(ctx context.Context) error {
	c.logger.Info("turning off")
	var errs []error
	if c.power != nil {
		if err := c.power.Action(ctx, basestation.Off); err != nil {
			errs = append(errs, fmt.Errorf("base stations: %w", err))
		}
	}
	if c.router != nil {
		if err := c.router.SwitchToNormal(ctx); err != nil {
			errs = append(errs, fmt.Errorf("audio: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Iterate re-applies the headset audio routing without touching power.
func (c *Controller) Iterate(ctx context.Context) error {
	if c.router == nil {
		return nil
	}
	return c.router.SwitchToVR(ctx)
}

// Dependencies are the external boundaries Build wires in. Zero fields
// get production implementations.
type Dependencies struct {
	// Directory defaults to a pactl.Client over pactl.ExecRunner.
	Directory audio.Directory

	// Radio defaults to a BluezRadio on the default adapter.
	Radio basestation.Radio

	// Execute defaults to basestation.ExecCommand.
	Execute basestation.Executor

	Clock  clock.Clock
	Logger *slog.Logger
}

// Build assembles a Controller from cfg. Building the audio router
// lists endpoints, so an ambiguous pattern or an unreachable audio
// server fails here.
func Build(ctx context.Context, cfg *config.Config, deps Dependencies) (*Controller, error) {
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}

	power := BuildPower(cfg, deps)

	var router *audio.Router
	if cfg.Audio.Enabled {
		if deps.Directory == nil {
			deps.Directory = pactl.NewClient(pactl.ExecRunner{}, pactl.Options{
				DryRun: cfg.DryRun,
				Logger: deps.Logger.With("component", "pactl"),
			})
		}
		var err error
		router, err = BuildRouter(ctx, cfg.Audio, deps.Directory, deps.Clock, deps.Logger.With("component", "audio"))
		if err != nil {
			return nil, err
		}
	}

	return New(power, router, deps.Logger), nil
}

// BuildPower returns the configured base station interface, or nil
// when base station control is disabled.
func BuildPower(cfg *config.Config, deps Dependencies) basestation.PowerInterface {
	if !cfg.Basestation.Enabled {
		return nil
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("component", "basestation")
	if cfg.Basestation.Type == config.BasestationCommand {
		return basestation.NewCommandInterface(basestation.CommandOptions{
			On:      cfg.Basestation.Commands.On,
			Off:     cfg.Basestation.Commands.Off,
			DryRun:  cfg.DryRun,
			Execute: deps.Execute,
			Logger:  logger,
		})
	}
	radio := deps.Radio
	if radio == nil {
		radio = basestation.NewBluezRadio()
	}
	return basestation.NewLighthouseInterface(basestation.LighthouseOptions{
		Radio:        radio,
		ScanAttempts: cfg.Basestation.AttemptCountScan,
		SetAttempts:  cfg.Basestation.AttemptCountSet,
		ScanTimeout:  cfg.Basestation.ScanTimeout.Std(),
		DryRun:       cfg.DryRun,
		Clock:        deps.Clock,
		Logger:       logger,
	})
}

// BuildRouter compiles the audio patterns and builds one Switcher per
// enabled role.
func BuildRouter(ctx context.Context, cfg config.AudioConfig, directory audio.Directory, c clock.Clock, logger *slog.Logger) (*audio.Router, error) {
	excluded, err := audio.CompilePatterns(cfg.ExcludedClientsRegexes)
	if err != nil {
		return nil, fmt.Errorf("audio.excluded_clients_regexes: %w", err)
	}
	vrPort, err := audio.CompilePattern(cfg.CardPortVRProductNameRegex)
	if err != nil {
		return nil, err
	}
	normalPort, err := audio.CompilePattern(cfg.CardPortNormalProductNameRegex)
	if err != nil {
		return nil, err
	}

	base := audio.SwitcherConfig{
		ExcludedClients:   excluded,
		SetCardPort:       cfg.SetCardPort,
		VRPortPattern:     vrPort,
		NormalPortPattern: normalPort,
		RescanPause:       cfg.CardRescanPauseTime.Std(),
		Failures: audio.FailurePolicy{
			Ceiling:  cfg.FailureCeiling,
			Cooldown: cfg.FailureCooldown.Std(),
		},
		Clock:  c,
		Logger: logger,
	}

	roles := []struct {
		enabled    bool
		role       pactl.Role
		vr, normal string
	}{
		{cfg.ChangeSink, pactl.Output, cfg.VRSinkRegex, cfg.NormalSinkRegex},
		{cfg.ChangeSource, pactl.Input, cfg.VRSourceRegex, cfg.NormalSourceRegex},
	}

	var switchers []*audio.Switcher
	for _, role := range roles {
		if !role.enabled {
			continue
		}
		switcherConfig := base
		switcherConfig.Role = role.role
		if switcherConfig.VRPattern, err = audio.CompilePattern(role.vr); err != nil {
			return nil, err
		}
		if switcherConfig.NormalPattern, err = audio.CompilePattern(role.normal); err != nil {
			return nil, err
		}
		switcher, err := audio.NewSwitcher(ctx, directory, switcherConfig)
		if err != nil {
			return nil, fmt.Errorf("%s switcher: %w", role.role, err)
		}
		switchers = append(switchers, switcher)
	}
	return audio.NewRouter(switchers...), nil
}
