// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package basestation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vrswitch/vrswitch/lib/clock"
)

// valveCompanyID is the Bluetooth SIG company identifier of Valve
// Corporation, which base stations advertise manufacturer data under.
const valveCompanyID = 0x055D

// lighthouseV2Prefix starts the manufacturer data of a version 2 base
// station.
var lighthouseV2Prefix = []byte{0x00, 0x02}

// Power characteristic values.
const (
	powerOff byte = 0x00
	powerOn  byte = 0x01
)

// attemptPause separates retries of a scan or a power write.
const attemptPause = 500 * time.Millisecond

// ErrNoBaseStations is returned when a scan finds nothing.
var ErrNoBaseStations = errors.New("bluetooth scan found no base stations")

// Advertisement is one device seen during a scan.
type Advertisement struct {
	Address   string
	LocalName string

	// ManufacturerData maps company identifiers to their payload.
	ManufacturerData map[uint16][]byte
}

// IsLighthouseV2 reports whether the advertisement comes from a version
// 2 base station.
func (a Advertisement) IsLighthouseV2() bool {
	data, ok := a.ManufacturerData[valveCompanyID]
	return ok && bytes.HasPrefix(data, lighthouseV2Prefix)
}

// Radio is the Bluetooth access a LighthouseInterface needs.
type Radio interface {
	// Scan listens for advertisements for timeout and returns every
	// device seen.
	Scan(ctx context.Context, timeout time.Duration) ([]Advertisement, error)

	// Connect opens a connection to address.
	Connect(ctx context.Context, address string) (Peripheral, error)
}

// Peripheral is a connected base station.
type Peripheral interface {
	// WritePower writes value to the power characteristic.
	WritePower(value byte) error
	Disconnect() error
}

// LighthouseOptions configures a LighthouseInterface.
type LighthouseOptions struct {
	Radio Radio

	// ScanAttempts is how often a scan is tried until one finds base
	// stations.
	ScanAttempts int

	// SetAttempts is how often the power state is written to every
	// base station. All attempts run; the action fails only if none
	// succeeded.
	SetAttempts int

	ScanTimeout time.Duration
	DryRun      bool

	Clock  clock.Clock
	Logger *slog.Logger
}

// LighthouseInterface powers version 2 base stations over BLE.
type LighthouseInterface struct {
	options LighthouseOptions
	logger  *slog.Logger
}

// NewLighthouseInterface returns a LighthouseInterface.
func NewLighthouseInterface(options LighthouseOptions) *LighthouseInterface {
	if options.ScanAttempts <= 0 {
		options.ScanAttempts = 5
	}
	if options.SetAttempts <= 0 {
		options.SetAttempts = 5
	}
	if options.ScanTimeout <= 0 {
		options.ScanTimeout = 2 * time.Second
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LighthouseInterface{options: options, logger: logger}
}

// Action scans for base stations and sets all of them to action.
func (l *LighthouseInterface) Action(ctx context.Context, action Action) error {
	l.logger.Info("scanning for base stations")
	var addresses []string
	err := l.retry(ctx, "scan", l.options.ScanAttempts, true, func() error {
		found, err := l.scan(ctx)
		if err != nil {
			return err
		}
		addresses = found
		return nil
	})
	if err != nil {
		return err
	}

	l.logger.Info("changing power state of base stations", "action", action.String(), "count", len(addresses))
	return l.retry(ctx, "set power", l.options.SetAttempts, false, func() error {
		return l.setPower(ctx, addresses, action)
	})
}

func (l *LighthouseInterface) scan(ctx context.Context) ([]string, error) {
	advertisements, err := l.options.Radio.Scan(ctx, l.options.ScanTimeout)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var addresses []string
	for _, advertisement := range advertisements {
		if !advertisement.IsLighthouseV2() || seen[advertisement.Address] {
			continue
		}
		seen[advertisement.Address] = true
		l.logger.Info("found base station", "name", advertisement.LocalName, "address", advertisement.Address)
		addresses = append(addresses, advertisement.Address)
	}
	if len(addresses) == 0 {
		return nil, ErrNoBaseStations
	}
	return addresses, nil
}

func (l *LighthouseInterface) setPower(ctx context.Context, addresses []string, action Action) error {
	value := powerOff
	if action == On {
		value = powerOn
	}
	for _, address := range addresses {
		l.logger.Info("connecting to base station", "address", address)
		peripheral, err := l.options.Radio.Connect(ctx, address)
		if err != nil {
			return fmt.Errorf("connecting to %s: %w", address, err)
		}
		if l.options.DryRun {
			l.logger.Warn("dry run, not writing power state", "address", address, "action", action.String())
		} else if err := peripheral.WritePower(value); err != nil {
			peripheral.Disconnect()
			return fmt.Errorf("writing power state to %s: %w", address, err)
		}
		if err := peripheral.Disconnect(); err != nil {
			l.logger.Warn("disconnecting from base station failed", "address", address, "error", err)
		}
	}
	return nil
}

// retry runs attempt up to attempts times with a pause after each try.
// With stopOnSuccess it returns after the first success; otherwise all
// attempts run and only the total absence of success is an error.
func (l *LighthouseInterface) retry(ctx context.Context, name string, attempts int, stopOnSuccess bool, attempt func() error) error {
	successes := 0
	var lastError error
	for i := 1; i <= attempts; i++ {
		if err := attempt(); err != nil {
			lastError = err
			l.logger.Error("base station attempt failed", "operation", name, "attempt", i, "of", attempts, "error", err)
		} else {
			successes++
			l.logger.Info("base station attempt succeeded", "operation", name, "attempt", i, "of", attempts)
			if stopOnSuccess {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.options.Clock.After(attemptPause):
		}
	}
	if successes == 0 {
		return fmt.Errorf("base station %s: no success in %d attempts: %w", name, attempts, lastError)
	}
	return nil
}
