// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vrswitch/vrswitch/lib/clock"
)

// Stage is the daemon's view of the VR session.
type Stage int

const (
	Startup Stage = iota
	BeforeSession
	DuringSession
	AfterSession
)

func (s Stage) String() string {
	switch s {
	case Startup:
		return "startup"
	case BeforeSession:
		return "before_session"
	case DuringSession:
		return "during_session"
	case AfterSession:
		return "after_session"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Controller performs the actions the daemon triggers.
type Controller interface {
	// TurnOn powers peripherals on and routes audio to the headset.
	TurnOn(ctx context.Context) error
	// TurnOff powers peripherals off and routes audio back.
	TurnOff(ctx context.Context) error
	// Iterate re-applies the headset audio routing only.
	Iterate(ctx context.Context) error
}

// Detector reports whether the watched process is running.
type Detector interface {
	Running(ctx context.Context) (bool, error)
}

// Config configures a Daemon. Zero durations take the defaults of the
// vrswitch configuration file.
type Config struct {
	Controller Controller
	Detector   Detector

	// ProcessName is the watched process, for log messages.
	ProcessName string

	WaitBeforeStart time.Duration
	WaitAfterQuit   time.Duration
	TickInterval    time.Duration

	// OnStage, if set, is called after every stage change with the new
	// stage and the time it was entered.
	OnStage func(stage Stage, since time.Time)

	Clock  clock.Clock
	Logger *slog.Logger
}

// Daemon is the session lifecycle state machine. Not safe for
// concurrent use; Run owns it.
type Daemon struct {
	config Config
	clock  clock.Clock
	logger *slog.Logger

	stage      Stage
	stageSince time.Time
}

// New returns a Daemon in the Startup stage.
func New(config Config) *Daemon {
	if config.WaitBeforeStart <= 0 {
		config.WaitBeforeStart = 60 * time.Second
	}
	if config.WaitAfterQuit <= 0 {
		config.WaitAfterQuit = 40 * time.Second
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Daemon{
		config:     config,
		clock:      config.Clock,
		logger:     logger,
		stage:      Startup,
		stageSince: config.Clock.Now(),
	}
}

// Stage returns the current stage and when it was entered.
func (d *Daemon) Stage() (Stage, time.Time) {
	return d.stage, d.stageSince
}

// Run ticks until the session ends or ctx is cancelled. Returns nil
// after a session end (TurnOff has run) and ctx.Err() on cancellation.
func (d *Daemon) Run(ctx context.Context) error {
	for {
		if !d.Tick(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.clock.After(d.config.TickInterval):
		}
	}
}

// Tick runs one iteration of the state machine and reports whether the
// daemon should keep running.
func (d *Daemon) Tick(ctx context.Context) bool {
	if d.stage == Startup {
		if err := d.config.Controller.TurnOn(ctx); err != nil {
			d.logger.Error("turning on failed", "error", err)
		}
		d.enter(BeforeSession)
	}

	if !d.check(ctx) {
		return false
	}

	if d.stage == DuringSession {
		if err := d.config.Controller.Iterate(ctx); err != nil {
			d.logger.Error("re-routing audio failed", "error", err)
		}
	}
	return true
}

// check applies the transitions driven by process presence. A failed
// detection leaves the stage unchanged for this tick.
func (d *Daemon) check(ctx context.Context) bool {
	running, err := d.config.Detector.Running(ctx)
	if err != nil {
		d.logger.Error("checking for process failed", "process", d.config.ProcessName, "error", err)
		return true
	}

	now := d.clock.Now()
	switch d.stage {
	case BeforeSession:
		if running {
			d.enter(DuringSession)
		} else if !now.Before(d.stageSince.Add(d.config.WaitBeforeStart)) {
			d.logger.Error("session never started, exiting",
				"process", d.config.ProcessName, "waited", d.config.WaitBeforeStart)
			d.finish(ctx)
			return false
		}

	case DuringSession:
		if !running {
			d.enter(AfterSession)
		}

	case AfterSession:
		if running {
			d.enter(DuringSession)
		} else if !now.Before(d.stageSince.Add(d.config.WaitAfterQuit)) {
			d.logger.Info("session ended, exiting", "process", d.config.ProcessName)
			d.finish(ctx)
			return false
		}
	}
	return true
}

func (d *Daemon) finish(ctx context.Context) {
	if err := d.config.Controller.TurnOff(ctx); err != nil {
		d.logger.Error("turning off failed", "error", err)
	}
}

func (d *Daemon) enter(stage Stage) {
	d.stage = stage
	d.stageSince = d.clock.Now()
	d.logger.Info("stage changed", "stage", stage.String())
	if d.config.OnStage != nil {
		d.config.OnStage(stage, d.stageSince)
	}
}
