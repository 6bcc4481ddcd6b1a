// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning means another daemon still holds the lock when the
// context passed to Acquire ends.
var ErrAlreadyRunning = errors.New("another daemon holds the lock")

const lockRetryDelay = 100 * time.Millisecond

// Lock is a held single-instance lock.
type Lock struct {
	file *flock.Flock
}

// Acquire takes the exclusive lock at path, retrying until ctx ends. A
// terminated prior instance releases its lock when it exits, so callers
// pass a context with a short deadline after TerminatePrior.
func Acquire(ctx context.Context, path string) (*Lock, error) {
	file := flock.New(path)
	locked, err := file.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, path)
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, path)
	}
	return &Lock{file: file}, nil
}

// Release drops the lock. The lock file itself stays in place.
func (l *Lock) Release() error {
	return l.file.Unlock()
}
