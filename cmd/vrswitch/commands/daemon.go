// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
	"github.com/vrswitch/vrswitch/lib/audio"
	"github.com/vrswitch/vrswitch/lib/clock"
	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/control"
	"github.com/vrswitch/vrswitch/lib/instance"
	"github.com/vrswitch/vrswitch/lib/procscan"
	"github.com/vrswitch/vrswitch/lib/session"
	"github.com/vrswitch/vrswitch/lib/version"
)

const (
	// priorExitTimeout bounds the wait for a terminated prior daemon.
	priorExitTimeout = 10 * time.Second

	// lockTimeout bounds the wait for the single-instance lock.
	lockTimeout = 5 * time.Second
)

type daemonParams struct {
	commonParams
	Foreground bool
	Detached   bool
}

func daemonCommand() *cli.Command {
	var params daemonParams
	return &cli.Command{
		Name:    "daemon",
		Aliases: []string{"d"},
		Summary: "Watch for a VR session and switch automatically",
		Description: `Start the session daemon in the background and return immediately.

The daemon turns everything on, then waits for the watched process
(daemon.watch_process_name, vrcompositor by default) to appear. While
it runs, new audio streams keep being routed to the headset. When it
quits for longer than daemon.wait_after_quit, or never appears within
daemon.wait_before_start, the daemon turns everything off and exits.

Starting a daemon stops any daemon already running.`,
		Usage: "vrswitch daemon [flags]",
		Examples: []cli.Example{
			{
				Description: "SteamVR launch options",
				Command:     "vrswitch daemon; %command%",
			},
			{
				Description: "Run attached to the terminal",
				Command:     "vrswitch daemon --foreground",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("daemon", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.BoolVar(&params.Foreground, "foreground", false, "run in the foreground instead of detaching")
			flagSet.BoolVar(&params.Detached, "detached", false, "")
			flagSet.MarkHidden("detached")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if !params.Foreground {
				return detachDaemon(params)
			}
			return runDaemon(ctx, params)
		},
	}
}

// detachDaemon re-executes this binary as a detached foreground daemon.
func detachDaemon(params daemonParams) error {
	// Fail here, where the user can see it, rather than in the child.
	if _, _, err := params.load(); err != nil {
		return err
	}
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating vrswitch executable: %w", err)
	}
	args := append([]string{"daemon", "--foreground", "--detached"}, params.args()...)
	pid, err := instance.Detach(executable, args, os.Environ())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "vrswitch daemon started (pid %d)\n", pid)
	return nil
}

func runDaemon(ctx context.Context, params daemonParams) error {
	cfg, configPath, err := params.load()
	if err != nil {
		return err
	}
	var console io.Writer = os.Stderr
	if params.Detached {
		console = nil
	}
	output, err := openLog(cfg, console)
	if err != nil {
		return err
	}
	defer output.Close()

	runID := uuid.NewString()
	logger := output.Logger.With("run_id", runID)
	logger.Info("vrswitch daemon starting",
		"version", version.Short(),
		"pid", os.Getpid(),
		"config", describeConfigPath(configPath),
		"dry_run", cfg.DryRun)

	err = serveDaemon(ctx, daemonEnvironment{
		Config:     cfg,
		ConfigPath: configPath,
		LogPath:    output.Path,
		RunID:      runID,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("daemon failed", "error", err)
		return err
	}
	logger.Info("vrswitch daemon exiting")
	return nil
}

// daemonEnvironment is everything serveDaemon needs. Nil Controller,
// Detector, and Clock get production implementations.
type daemonEnvironment struct {
	Config     *config.Config
	ConfigPath string
	LogPath    string
	RunID      string

	Controller session.Controller
	Detector   session.Detector

	// Directory replaces pactl when Controller is nil.
	Directory audio.Directory

	Clock  clock.Clock
	Logger *slog.Logger
}

// serveDaemon replaces any prior daemon, holds the single-instance lock,
// and runs the session loop to completion. The state file tracks the
// current stage for the status command and is removed on exit.
// Cancellation of ctx is a normal shutdown and returns nil.
func serveDaemon(ctx context.Context, env daemonEnvironment) error {
	logger := env.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if env.Clock == nil {
		env.Clock = clock.Real()
	}
	stateDirectory := env.Config.Daemon.StateDirectory
	if err := os.MkdirAll(stateDirectory, 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	statePath := instance.StatePath(stateDirectory)

	terminateContext, cancel := context.WithTimeout(ctx, priorExitTimeout)
	pid, err := instance.TerminatePrior(terminateContext, statePath, logger)
	cancel()
	if err != nil {
		logger.Warn("prior daemon did not exit", "pid", pid, "error", err)
	} else if pid != 0 {
		logger.Info("prior daemon stopped", "pid", pid)
	}

	lockContext, cancel := context.WithTimeout(ctx, lockTimeout)
	lock, err := instance.Acquire(lockContext, instance.LockPath(stateDirectory))
	cancel()
	if err != nil {
		return err
	}
	defer lock.Release()

	if env.Controller == nil {
		controller, err := buildDaemonController(ctx, env, logger)
		if err != nil {
			return err
		}
		env.Controller = controller
	}
	if env.Detector == nil {
		env.Detector = procscan.New(env.Config.Daemon.WatchProcessName)
	}

	started := env.Clock.Now()
	state := instance.State{
		PID:        os.Getpid(),
		RunID:      env.RunID,
		Stage:      session.Startup.String(),
		Since:      started,
		Started:    started,
		ConfigPath: env.ConfigPath,
		LogPath:    env.LogPath,
	}
	if err := instance.Write(statePath, state); err != nil {
		return err
	}
	defer clearOwnState(statePath, logger)

	daemon := session.New(session.Config{
		Controller:      env.Controller,
		Detector:        env.Detector,
		ProcessName:     env.Config.Daemon.WatchProcessName,
		WaitBeforeStart: env.Config.Daemon.WaitBeforeStart.Std(),
		WaitAfterQuit:   env.Config.Daemon.WaitAfterQuit.Std(),
		TickInterval:    env.Config.Daemon.TickInterval.Std(),
		OnStage: func(stage session.Stage, since time.Time) {
			state.Stage = stage.String()
			state.Since = since
			if err := instance.Write(statePath, state); err != nil {
				logger.Warn("recording daemon stage failed", "error", err)
			}
		},
		Clock:  env.Clock,
		Logger: logger,
	})

	err = daemon.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("daemon stopped by signal")
		return nil
	}
	return err
}

// buildDaemonController builds the controller up front. A pattern that
// matches several endpoints is a configuration error and stops the
// daemon; any other failure, such as an audio server that is not up
// yet, is logged and the build is retried on each action.
func buildDaemonController(ctx context.Context, env daemonEnvironment, logger *slog.Logger) (session.Controller, error) {
	deferred := control.NewDeferred(func(ctx context.Context) (*control.Controller, error) {
		return control.Build(ctx, env.Config, control.Dependencies{
			Directory: env.Directory,
			Clock:     env.Clock,
			Logger:    logger,
		})
	})
	err := deferred.Prepare(ctx)
	if err == nil {
		return deferred, nil
	}
	if errors.Is(err, audio.ErrAmbiguousMatch) {
		return nil, err
	}
	logger.Warn("controller not ready, retrying on the next action", "error", err)
	return deferred, nil
}

// clearOwnState removes the state file unless a newer daemon has
// already replaced it.
func clearOwnState(statePath string, logger *slog.Logger) {
	state, err := instance.Read(statePath)
	if err != nil || state.PID != os.Getpid() {
		return
	}
	if err := instance.Clear(statePath); err != nil {
		logger.Warn("removing state file failed", "error", err)
	}
}
