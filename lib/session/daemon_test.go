// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/vrswitch/vrswitch/lib/clock"
	"github.com/vrswitch/vrswitch/lib/testutil"
)

var epoch = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

// recordingController counts the actions the daemon triggers.
type recordingController struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (c *recordingController) record(action string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.actions = append(c.actions, action)
	return c.err
}

func (c *recordingController) TurnOn(context.Context) error  { return c.record("on") }
func (c *recordingController) TurnOff(context.Context) error { return c.record("off") }
func (c *recordingController) Iterate(context.Context) error { return c.record("iterate") }

func (c *recordingController) count(action string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, a := range c.actions {
		if a == action {
			n++
		}
	}
	return n
}

// switchDetector reports whatever running is set to.
type switchDetector struct {
	mu      sync.Mutex
	running bool
	err     error
}

func (d *switchDetector) set(running bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = running
}

func (d *switchDetector) Running(context.Context) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running, d.err
}

type fixture struct {
	clock      *clock.FakeClock
	controller *recordingController
	detector   *switchDetector
	daemon     *Daemon
	stages     []Stage
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		clock:      clock.Fake(epoch),
		controller: &recordingController{},
		detector:   &switchDetector{},
	}
	f.daemon = New(Config{
		Controller:      f.controller,
		Detector:        f.detector,
		ProcessName:     "vrcompositor",
		WaitBeforeStart: 60 * time.Second,
		WaitAfterQuit:   40 * time.Second,
		TickInterval:    time.Second,
		OnStage:         func(stage Stage, _ time.Time) { f.stages = append(f.stages, stage) },
		Clock:           f.clock,
	})
	return f
}

func (f *fixture) tick(t *testing.T, wantContinue bool) {
	t.Helper()
	if got := f.daemon.Tick(context.Background()); got != wantContinue {
		t.Fatalf("Tick() = %v, want %v (stage %v)", got, wantContinue, f.stage())
	}
}

func (f *fixture) stage() Stage {
	stage, _ := f.daemon.Stage()
	return stage
}

func TestStartupTurnsOnOnce(t *testing.T) {
	f := newFixture(t)
	f.tick(t, true)
	if f.stage() != BeforeSession {
		t.Fatalf("stage = %v, want before_session", f.stage())
	}
	f.clock.Advance(time.Second)
	f.tick(t, true)
	if n := f.controller.count("on"); n != 1 {
		t.Errorf("TurnOn called %d times, want 1", n)
	}
}

func TestSessionNeverStarts(t *testing.T) {
	f := newFixture(t)
	f.tick(t, true)

	f.clock.Advance(59 * time.Second)
	f.tick(t, true)
	if n := f.controller.count("off"); n != 0 {
		t.Fatalf("TurnOff called before the start timeout")
	}

	f.clock.Advance(time.Second)
	f.tick(t, false)
	if n := f.controller.count("off"); n != 1 {
		t.Errorf("TurnOff called %d times, want 1", n)
	}
	if n := f.controller.count("on"); n != 1 {
		t.Errorf("TurnOn called %d times, want 1", n)
	}
}

func TestSessionIteratesWhileRunning(t *testing.T) {
	f := newFixture(t)
	f.tick(t, true)

	f.detector.set(true)
	f.clock.Advance(time.Second)
	f.tick(t, true)
	if f.stage() != DuringSession {
		t.Fatalf("stage = %v, want during_session", f.stage())
	}
	for range 5 {
		f.clock.Advance(time.Second)
		f.tick(t, true)
	}
	if n := f.controller.count("iterate"); n != 6 {
		t.Errorf("Iterate called %d times, want 6 (one per tick during the session)", n)
	}
	if n := f.controller.count("on"); n != 1 {
		t.Errorf("TurnOn called %d times during the session, want 1", n)
	}
}

func TestFlappingProcessDoesNotTurnOff(t *testing.T) {
	f := newFixture(t)
	f.tick(t, true)

	f.detector.set(true)
	f.tick(t, true)

	f.detector.set(false)
	f.tick(t, true)
	if f.stage() != AfterSession {
		t.Fatalf("stage = %v, want after_session", f.stage())
	}

	f.clock.Advance(30 * time.Second)
	f.detector.set(true)
	f.tick(t, true)
	if f.stage() != DuringSession {
		t.Fatalf("stage = %v, want during_session after the process returned", f.stage())
	}

	f.clock.Advance(30 * time.Second)
	f.detector.set(false)
	f.tick(t, true)

	// The grace period restarts on re-entering after_session.
	f.clock.Advance(39 * time.Second)
	f.tick(t, true)
	if n := f.controller.count("off"); n != 0 {
		t.Fatalf("TurnOff called %d times during a flap", n)
	}

	f.clock.Advance(time.Second)
	f.tick(t, false)
	if n := f.controller.count("off"); n != 1 {
		t.Errorf("TurnOff called %d times, want 1", n)
	}

	want := []Stage{BeforeSession, DuringSession, AfterSession, DuringSession, AfterSession}
	if !reflect.DeepEqual(f.stages, want) {
		t.Errorf("stages = %v, want %v", f.stages, want)
	}
}

func TestControllerErrorsDoNotStopTheLoop(t *testing.T) {
	f := newFixture(t)
	f.controller.err = errors.New("pactl: connection refused")
	f.tick(t, true)

	f.detector.set(true)
	f.tick(t, true)
	f.tick(t, true)
	if n := f.controller.count("iterate"); n != 2 {
		t.Errorf("Iterate called %d times after errors, want 2", n)
	}
}

func TestDetectionErrorKeepsStage(t *testing.T) {
	f := newFixture(t)
	f.tick(t, true)

	f.detector.err = errors.New("reading process table: permission denied")
	f.clock.Advance(2 * time.Minute)
	f.tick(t, true)
	if f.stage() != BeforeSession {
		t.Errorf("stage = %v after a failed detection, want before_session", f.stage())
	}
	if n := f.controller.count("off"); n != 0 {
		t.Errorf("TurnOff called on a failed detection")
	}
}

func TestRunExitsAfterStartTimeout(t *testing.T) {
	controller := &recordingController{}
	fake := clock.Fake(epoch)
	daemon := New(Config{
		Controller:      controller,
		Detector:        &switchDetector{},
		WaitBeforeStart: 3 * time.Second,
		TickInterval:    time.Second,
		Clock:           fake,
	})

	done := make(chan error, 1)
	go func() { done <- daemon.Run(context.Background()) }()

	// Ticks at t=0, 1, 2 wait; the tick at t=3 exits.
	for range 3 {
		fake.WaitForTimers(1)
		fake.Advance(time.Second)
	}
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run"); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if n := controller.count("off"); n != 1 {
		t.Errorf("TurnOff called %d times, want 1", n)
	}
}

func TestRunCancelDoesNotTurnOff(t *testing.T) {
	controller := &recordingController{}
	fake := clock.Fake(epoch)
	daemon := New(Config{
		Controller: controller,
		Detector:   &switchDetector{},
		Clock:      fake,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- daemon.Run(ctx) }()

	fake.WaitForTimers(1)
	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run"); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}
	if n := controller.count("off"); n != 0 {
		t.Errorf("TurnOff called %d times on cancellation, want 0", n)
	}
}

func TestStageString(t *testing.T) {
	if got := DuringSession.String(); got != "during_session" {
		t.Errorf("DuringSession.String() = %q", got)
	}
	if got := Stage(9).String(); got != "Stage(9)" {
		t.Errorf("Stage(9).String() = %q", got)
	}
}
