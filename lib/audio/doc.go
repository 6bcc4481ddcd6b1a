// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package audio moves active audio streams between the headset's
// endpoint and the desktop endpoint.
//
// A Switcher manages one role (sinks or sources). At construction it
// resolves the "normal" endpoint once, either by pattern or by asking
// the server for its current default, because the default changes as
// soon as VR routing is applied. The "vr" endpoint is re-resolved on
// every SwitchToVR, since headsets appear and disappear as SteamVR
// powers the display.
//
// Patterns are anchored at the start of the endpoint, client, or
// product name. A pattern matching more than one endpoint is an
// operator error and returns ErrAmbiguousMatch; a pattern matching
// none is logged and the switch is skipped.
//
// Moves that pactl rejects are recorded in a FailureTracker. A failed
// connection is not retried within the cooldown after its last failure
// and never again once it has failed more than the ceiling number of
// times. Records for connections that stop appearing in listings are
// pruned.
//
// A Router fans SwitchToVR and SwitchToNormal out to one Switcher per
// enabled role.
package audio
