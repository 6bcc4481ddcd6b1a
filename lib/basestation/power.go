// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package basestation

import (
	"context"
	"fmt"
)

// Action is the requested power state.
type Action int

const (
	Off Action = iota
	On
)

func (a Action) String() string {
	switch a {
	case On:
		return "on"
	case Off:
		return "off"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// PowerInterface switches every managed base station.
type PowerInterface interface {
	Action(ctx context.Context, action Action) error
}
