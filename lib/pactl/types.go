// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import "fmt"

// Role selects between the output and input side of the server. Both
// sides share every listing and rerouting operation and differ only in
// which pactl subcommands are used.
type Role int

const (
	// Output endpoints are sinks; their connections are sink-inputs.
	Output Role = iota
	// Input endpoints are sources; their connections are
	// source-outputs.
	Input
)

func (r Role) String() string {
	switch r {
	case Output:
		return "sink"
	case Input:
		return "source"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// endpointList is the pactl "list short" object type for endpoints.
func (r Role) endpointList() string {
	if r == Input {
		return "sources"
	}
	return "sinks"
}

// connectionList is the pactl "list short" object type for connections.
func (r Role) connectionList() string {
	if r == Input {
		return "source-outputs"
	}
	return "sink-inputs"
}

// MoveCommand is the pactl subcommand that rebinds a connection.
func (r Role) MoveCommand() string {
	if r == Input {
		return "move-source-output"
	}
	return "move-sink-input"
}

func (r Role) suspendCommand() string {
	if r == Input {
		return "suspend-source"
	}
	return "suspend-sink"
}

func (r Role) defaultLabel() string {
	if r == Input {
		return "Default Source: "
	}
	return "Default Sink: "
}

// Endpoint is an audio output (sink) or input (source). Endpoints are
// identified by name only; two Endpoints with the same Name and Role
// are the same device.
type Endpoint struct {
	Name string
	Role Role
}

// Connection is an active stream bound to an endpoint: a sink-input or
// a source-output. ID is only valid within the listing it came from.
type Connection struct {
	ID uint32

	// HasClient is false when pactl reported no owning client.
	HasClient bool
	ClientID  uint32

	// ClientName is filled by Client.ResolveClientNames. Empty when the
	// connection has no client or the client was not found.
	ClientName string
}

// ClientInfo is one entry of "pactl list short clients".
type ClientInfo struct {
	ID   uint32
	Name string
}

// Card is a sound card with its selectable profiles and physical ports.
type Card struct {
	Name     string
	Profiles []Profile
	Ports    []Port
}

// Profile is a named hardware configuration that a card can activate.
type Profile struct {
	Name        string
	Description string
}

// Port is a physical connector on a card.
type Port struct {
	Name string

	// ProductName is the device.product.name property of whatever is
	// plugged into the port (for HDMI, the monitor or headset EDID
	// name). Empty when the server reports none.
	ProductName string

	// Profiles lists the card profiles this port is part of, in the
	// order pactl reports them. Selecting the port activates
	// Profiles[0].
	Profiles []Profile

	// Card is the name of the owning card.
	Card string
}
