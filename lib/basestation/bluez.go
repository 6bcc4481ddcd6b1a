// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package basestation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/bluetooth"
)

// Lighthouse v2 power service and characteristic.
var (
	powerServiceUUID        = mustUUID("00001523-1212-efde-1523-785feabcd124")
	powerCharacteristicUUID = mustUUID("00001525-1212-efde-1523-785feabcd124")
)

func mustUUID(s string) bluetooth.UUID {
	uuid, err := bluetooth.ParseUUID(s)
	if err != nil {
		panic(fmt.Sprintf("parsing built-in UUID %s: %v", s, err))
	}
	return uuid
}

// BluezRadio is a Radio backed by BlueZ over D-Bus.
type BluezRadio struct {
	adapter *bluetooth.Adapter

	enableOnce sync.Once
	enableErr  error

	mu        sync.Mutex
	addresses map[string]bluetooth.Address
}

// NewBluezRadio returns a radio on the default BlueZ adapter.
func NewBluezRadio() *BluezRadio {
	return &BluezRadio{
		adapter:   bluetooth.DefaultAdapter,
		addresses: make(map[string]bluetooth.Address),
	}
}

func (r *BluezRadio) enable() error {
	r.enableOnce.Do(func() {
		if err := r.adapter.Enable(); err != nil {
			r.enableErr = fmt.Errorf("enabling bluetooth adapter: %w", err)
		}
	})
	return r.enableErr
}

// Scan implements Radio.
func (r *BluezRadio) Scan(ctx context.Context, timeout time.Duration) ([]Advertisement, error) {
	if err := r.enable(); err != nil {
		return nil, err
	}

	scanContext, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	go func() {
		<-scanContext.Done()
		r.adapter.StopScan()
	}()

	var (
		mu             sync.Mutex
		advertisements []Advertisement
	)
	err := r.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		advertisement := Advertisement{
			Address:          result.Address.String(),
			LocalName:        result.LocalName(),
			ManufacturerData: make(map[uint16][]byte),
		}
		for _, element := range result.ManufacturerData() {
			advertisement.ManufacturerData[element.CompanyID] = element.Data
		}

		r.mu.Lock()
		r.addresses[advertisement.Address] = result.Address
		r.mu.Unlock()

		mu.Lock()
		advertisements = append(advertisements, advertisement)
		mu.Unlock()
	})
	if err != nil {
		return nil, fmt.Errorf("bluetooth scan: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	return advertisements, nil
}

// Connect implements Radio. The address must have been seen by Scan.
func (r *BluezRadio) Connect(ctx context.Context, address string) (Peripheral, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	target, ok := r.addresses[address]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("address %s was not seen in a scan", address)
	}

	device, err := r.adapter.Connect(target, bluetooth.ConnectionParams{})
	if err != nil {
		return nil, err
	}

	services, err := device.DiscoverServices([]bluetooth.UUID{powerServiceUUID})
	if err != nil || len(services) == 0 {
		device.Disconnect()
		return nil, errors.Join(errors.New("power service not found"), err)
	}
	characteristics, err := services[0].DiscoverCharacteristics([]bluetooth.UUID{powerCharacteristicUUID})
	if err != nil || len(characteristics) == 0 {
		device.Disconnect()
		return nil, errors.Join(errors.New("power characteristic not found"), err)
	}
	characteristic := characteristics[0]

	return &bluezPeripheral{
		write: func(value []byte) error {
			_, err := characteristic.WriteWithoutResponse(value)
			return err
		},
		disconnect: device.Disconnect,
	}, nil
}

type bluezPeripheral struct {
	write      func(value []byte) error
	disconnect func() error
}

func (p *bluezPeripheral) WritePower(value byte) error {
	return p.write([]byte{value})
}

func (p *bluezPeripheral) Disconnect() error {
	return p.disconnect()
}
