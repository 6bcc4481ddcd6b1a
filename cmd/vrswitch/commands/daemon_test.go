// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/vrswitch/vrswitch/lib/audio"
	"github.com/vrswitch/vrswitch/lib/config"
	"github.com/vrswitch/vrswitch/lib/instance"
	"github.com/vrswitch/vrswitch/lib/pactl"
)

type recordingController struct {
	calls []string
}

func (c *recordingController) TurnOn(context.Context) error {
	c.calls = append(c.calls, "on")
	return nil
}

func (c *recordingController) TurnOff(context.Context) error {
	c.calls = append(c.calls, "off")
	return nil
}

func (c *recordingController) Iterate(context.Context) error {
	c.calls = append(c.calls, "iterate")
	return nil
}

type funcDetector func(ctx context.Context) (bool, error)

func (f funcDetector) Running(ctx context.Context) (bool, error) {
	return f(ctx)
}

func daemonConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Daemon.StateDirectory = t.TempDir()
	cfg.Daemon.WaitBeforeStart = config.Duration(30 * time.Millisecond)
	cfg.Daemon.WaitAfterQuit = config.Duration(30 * time.Millisecond)
	cfg.Daemon.TickInterval = config.Duration(5 * time.Millisecond)
	return cfg
}

func TestServeDaemonSessionNeverStarts(t *testing.T) {
	cfg := daemonConfig(t)
	controller := &recordingController{}
	var stageDuringCheck string
	detector := funcDetector(func(context.Context) (bool, error) {
		state, err := instance.Read(instance.StatePath(cfg.Daemon.StateDirectory))
		if err == nil {
			stageDuringCheck = state.Stage
		}
		return false, nil
	})

	err := serveDaemon(context.Background(), daemonEnvironment{
		Config:     cfg,
		RunID:      "run-1",
		Controller: controller,
		Detector:   detector,
	})
	if err != nil {
		t.Fatalf("serveDaemon: %v", err)
	}
	if !reflect.DeepEqual(controller.calls, []string{"on", "off"}) {
		t.Errorf("controller calls = %v, want [on off]", controller.calls)
	}
	if stageDuringCheck != "before_session" {
		t.Errorf("recorded stage = %q, want before_session", stageDuringCheck)
	}
	if _, err := os.Stat(instance.StatePath(cfg.Daemon.StateDirectory)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("state file not removed on exit: %v", err)
	}

	lock, err := instance.Acquire(context.Background(), instance.LockPath(cfg.Daemon.StateDirectory))
	if err != nil {
		t.Fatalf("lock still held after exit: %v", err)
	}
	lock.Release()
}

func TestServeDaemonCancelledDuringSession(t *testing.T) {
	cfg := daemonConfig(t)
	controller := &recordingController{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := 0
	var stages []string
	detector := funcDetector(func(context.Context) (bool, error) {
		checks++
		state, err := instance.Read(instance.StatePath(cfg.Daemon.StateDirectory))
		if err == nil {
			stages = append(stages, state.Stage)
		}
		if checks == 3 {
			cancel()
		}
		return true, nil
	})

	err := serveDaemon(ctx, daemonEnvironment{
		Config:     cfg,
		Controller: controller,
		Detector:   detector,
	})
	if err != nil {
		t.Fatalf("serveDaemon: %v", err)
	}
	for _, call := range controller.calls {
		if call == "off" {
			t.Errorf("cancellation turned off: %v", controller.calls)
		}
	}
	if len(controller.calls) == 0 || controller.calls[0] != "on" {
		t.Errorf("controller calls = %v, want on first", controller.calls)
	}
	if len(stages) < 2 || stages[1] != "during_session" {
		t.Errorf("recorded stages = %v, want during_session after the first check", stages)
	}
}

func TestServeDaemonSurvivesUnreachableAudioServer(t *testing.T) {
	cfg := daemonConfig(t)
	cfg.Audio.SetCardPort = false
	server := pactl.NewFakeServer()
	server.SetFailure("list short sinks", 1, "Connection failure: Connection refused")

	checks := 0
	detector := funcDetector(func(context.Context) (bool, error) {
		checks++
		if checks == 2 {
			server.SetOutput("list short sinks",
				"0\tspeakers\tm\tx\tRUNNING\n1\talsa_output.hdmi-stereo\tm\tx\tIDLE\n")
			server.SetOutput("info", "Default Sink: speakers\n")
			server.SetOutput("list short sink-inputs", "5\t0\t1\tp\tx\n")
			server.SetOutput("list short clients", "1\tp\tFirefox\n")
		}
		return checks >= 2 && checks < 4, nil
	})

	err := serveDaemon(context.Background(), daemonEnvironment{
		Config:    cfg,
		Detector:  detector,
		Directory: pactl.NewClient(server, pactl.Options{}),
	})
	if err != nil {
		t.Fatalf("serveDaemon: %v", err)
	}
	if checks < 2 {
		t.Fatalf("daemon stopped after %d checks", checks)
	}
	if moves := server.CallsWithPrefix("move-sink-input 5 alsa_output.hdmi-stereo"); len(moves) == 0 {
		t.Error("audio never routed to the headset once the server answered")
	}
	if moves := server.CallsWithPrefix("move-sink-input 5 speakers"); len(moves) != 1 {
		t.Errorf("routed back %d times, want 1", len(moves))
	}
}

func TestServeDaemonAmbiguousPatternIsFatal(t *testing.T) {
	cfg := daemonConfig(t)
	cfg.Audio.SetCardPort = false
	cfg.Audio.VRSinkRegex = "alsa_output"
	server := pactl.NewFakeServer()
	server.SetOutput("list short sinks",
		"0\talsa_output.analog\tm\tx\tRUNNING\n1\talsa_output.hdmi-stereo\tm\tx\tIDLE\n")
	server.SetOutput("info", "Default Sink: alsa_output.analog\n")

	err := serveDaemon(context.Background(), daemonEnvironment{
		Config:    cfg,
		Detector:  funcDetector(func(context.Context) (bool, error) { return false, nil }),
		Directory: pactl.NewClient(server, pactl.Options{}),
	})
	if !errors.Is(err, audio.ErrAmbiguousMatch) {
		t.Fatalf("serveDaemon error = %v, want ErrAmbiguousMatch", err)
	}
	if _, err := os.Stat(instance.StatePath(cfg.Daemon.StateDirectory)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("state file left behind: %v", err)
	}
}

func TestServeDaemonLockHeld(t *testing.T) {
	cfg := daemonConfig(t)
	held, err := instance.Acquire(context.Background(), instance.LockPath(cfg.Daemon.StateDirectory))
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer held.Release()

	controller := &recordingController{}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = serveDaemon(ctx, daemonEnvironment{
		Config:     cfg,
		Controller: controller,
		Detector:   funcDetector(func(context.Context) (bool, error) { return false, nil }),
	})
	if !errors.Is(err, instance.ErrAlreadyRunning) {
		t.Fatalf("serveDaemon error = %v, want ErrAlreadyRunning", err)
	}
	if len(controller.calls) != 0 {
		t.Errorf("controller used without the lock: %v", controller.calls)
	}
}

func TestCommonParamsArgs(t *testing.T) {
	params := commonParams{ConfigPath: "/home/user/vr.yaml", DryRun: true}
	want := []string{"--config", "/home/user/vr.yaml", "--dry-run"}
	if got := params.args(); !reflect.DeepEqual(got, want) {
		t.Errorf("args = %q, want %q", got, want)
	}
	if got := (&commonParams{}).args(); len(got) != 0 {
		t.Errorf("empty params args = %q", got)
	}
}

func TestCommonParamsLoadDryRunOverride(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	if err := os.WriteFile(path, []byte("dry_run: false\naudio:\n  vr_sink_regex: 'hdmi'\n"), 0644); err != nil {
		t.Fatal(err)
	}
	params := commonParams{ConfigPath: path, DryRun: true}
	cfg, loaded, err := params.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != path {
		t.Errorf("loaded path = %q, want %q", loaded, path)
	}
	if !cfg.DryRun {
		t.Error("--dry-run did not override the file")
	}
	if cfg.Audio.VRSinkRegex != "hdmi" {
		t.Errorf("vr_sink_regex = %q", cfg.Audio.VRSinkRegex)
	}
}

func TestCommonParamsLoadInvalid(t *testing.T) {
	path := t.TempDir() + "/config.yaml"
	if err := os.WriteFile(path, []byte("audio:\n  vr_sink_regex: '('\n"), 0644); err != nil {
		t.Fatal(err)
	}
	params := commonParams{ConfigPath: path}
	if _, _, err := params.load(); err == nil {
		t.Fatal("load accepted an invalid pattern")
	}
}
