// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package basestation

import (
	"context"
	"strings"
	"testing"
)

var (
	_ Radio      = (*BluezRadio)(nil)
	_ Peripheral = (*bluezPeripheral)(nil)
)

func TestPowerUUIDs(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"service", powerServiceUUID.String(), "00001523-1212-efde-1523-785feabcd124"},
		{"characteristic", powerCharacteristicUUID.String(), "00001525-1212-efde-1523-785feabcd124"},
	}
	for _, test := range tests {
		if !strings.EqualFold(test.got, test.want) {
			t.Errorf("%s UUID = %s, want %s", test.name, test.got, test.want)
		}
	}
}

func TestBluezRadioConnectRequiresScan(t *testing.T) {
	radio := NewBluezRadio()
	_, err := radio.Connect(context.Background(), "AA:BB:CC:DD:EE:FF")
	if err == nil || !strings.Contains(err.Error(), "not seen in a scan") {
		t.Fatalf("Connect error = %v, want unseen address", err)
	}
}

func TestBluezPeripheralWritesSingleByte(t *testing.T) {
	var written []byte
	disconnected := false
	peripheral := &bluezPeripheral{
		write: func(value []byte) error {
			written = value
			return nil
		},
		disconnect: func() error {
			disconnected = true
			return nil
		},
	}
	if err := peripheral.WritePower(powerOn); err != nil {
		t.Fatalf("WritePower: %v", err)
	}
	if len(written) != 1 || written[0] != powerOn {
		t.Errorf("written = %v, want [%#x]", written, powerOn)
	}
	if err := peripheral.Disconnect(); err != nil || !disconnected {
		t.Errorf("Disconnect = %v, disconnected %v", err, disconnected)
	}
}
