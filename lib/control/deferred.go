// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"fmt"
)

// BuildFunc builds a Controller, typically by calling Build.
type BuildFunc func(ctx context.Context) (*Controller, error)

// Deferred is a Controller built on first use. A failed build is
// returned from the action that triggered it and retried on the next
// one, so a daemon tick loop survives an audio server that is not
// reachable yet. Not safe for concurrent use.
type Deferred struct {
	build      BuildFunc
	controller *Controller
}

// NewDeferred returns a Deferred that calls build until it succeeds.
func NewDeferred(build BuildFunc) *Deferred {
	return &Deferred{build: build}
}

// Built reports whether the underlying Controller exists.
func (d *Deferred) Built() bool {
	return d.controller != nil
}

// Prepare builds the Controller now if it does not exist yet, without
// performing any action.
func (d *Deferred) Prepare(ctx context.Context) error {
	_, err := d.get(ctx)
	return err
}

func (d *Deferred) get(ctx context.Context) (*Controller, error) {
	if d.controller != nil {
		return d.controller, nil
	}
	controller, err := d.build(ctx)
	if err != nil {
		return nil, fmt.Errorf("building controller: %w", err)
	}
	d.controller = controller
	return controller, nil
}

// TurnOn builds the Controller if needed and turns on.
func (d *Deferred) TurnOn(ctx context.Context) error {
	controller, err := d.get(ctx)
	if err != nil {
		return err
	}
	return controller.TurnOn(ctx)
}

// TurnOff builds the Controller if needed and turns off.
func (d *Deferred) TurnOff(ctx context.Context) error {
	controller, err := d.get(ctx)
	if err != nil {
		return err
	}
	return controller.TurnOff(ctx)
}

// Iterate builds the Controller if needed and re-applies routing.
func (d *Deferred) Iterate(ctx context.Context) error {
	controller, err := d.get(ctx)
	if err != nil {
		return err
	}
	return controller.Iterate(ctx)
}
