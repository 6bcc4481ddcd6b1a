// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// vrswitch switches a Linux desktop in and out of VR: it moves audio
// streams between the headset and the normal endpoints, powers
// Lighthouse base stations, and runs a daemon that follows the SteamVR
// session lifecycle.
//
// Usage:
//
//	vrswitch on|off [--config path] [--dry-run]
//	vrswitch daemon [--foreground] [--config path] [--dry-run]
//	vrswitch status
//	vrswitch doctor
//	vrswitch dump
//	vrswitch install
//	vrswitch version
//
// Run "vrswitch <command> --help" for details on each command.
package main
