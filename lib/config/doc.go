// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for vrswitch.
//
// The configuration file is found by [Resolve], in order:
//
//   - the --config flag,
//   - the VRSWITCH_CONFIG environment variable,
//   - $XDG_CONFIG_HOME/vrswitch/config.yaml (or ~/.config/...) if it
//     exists.
//
// When none applies the built-in [Default] is used unchanged, so a
// fresh install works with an HDMI headset and no configuration at all.
// A file only needs the keys it changes; everything else keeps its
// default.
//
// Durations accept Go syntax ("40s", "500ms") or a bare number of
// seconds, which is how older configuration files wrote them.
//
// Path fields expand a leading "~/" and ${VAR} / ${VAR:-default}
// patterns after loading.
//
// [Config.Validate] compiles every regular expression and reports all
// problems at once with errors.Join.
//
// This package depends on no other vrswitch packages.
package config
