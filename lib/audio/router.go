// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"context"
	"errors"
	"fmt"
)

// Router switches every managed role together.
type Router struct {
	switchers []*Switcher
}

// NewRouter returns a Router over switchers. A Router without
// switchers does nothing.
func NewRouter(switchers ...*Switcher) *Router {
	return &Router{switchers: switchers}
}

// Switchers returns the managed switchers.
func (r *Router) Switchers() []*Switcher {
	return r.switchers
}

// SwitchToVR switches every role to its VR endpoint. A failure in one
// role does not prevent the others from switching.
func (r *Router) SwitchToVR(ctx context.Context) error {
	var errs []error
	for _, switcher := range r.switchers {
		if err := switcher.SwitchToVR(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", switcher.Role(), err))
		}
	}
	return errors.Join(errs...)
}

// SwitchToNormal switches every role to its normal endpoint.
func (r *Router) SwitchToNormal(ctx context.Context) error {
	var errs []error
	for _, switcher := range r.switchers {
		if err := switcher.SwitchToNormal(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", switcher.Role(), err))
		}
	}
	return errors.Join(errs...)
}
