// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/vrswitch/vrswitch/lib/clock"
	"github.com/vrswitch/vrswitch/lib/pactl"
)

// Directory is the view of the audio server a Switcher needs.
// *pactl.Client implements it.
type Directory interface {
	ListEndpoints(ctx context.Context, role pactl.Role) ([]pactl.Endpoint, error)
	ListConnections(ctx context.Context, role pactl.Role) ([]pactl.Connection, error)
	ResolveClientNames(ctx context.Context, connections []pactl.Connection) error
	DefaultEndpointName(ctx context.Context, role pactl.Role) (string, error)
	ListCards(ctx context.Context) ([]pactl.Card, error)

	MoveConnection(ctx context.Context, role pactl.Role, id uint32, endpoint string) pactl.Result
	SetSuspended(ctx context.Context, role pactl.Role, endpoint string, suspended bool) pactl.Result
	SetCardProfile(ctx context.Context, card, profile string) pactl.Result

	Outputs() *pactl.OutputLog
}

// DeviceType names the two configurations switched between.
type DeviceType string

const (
	VR     DeviceType = "vr"
	Normal DeviceType = "normal"
)

// SwitcherConfig configures one Switcher. Patterns are compiled with
// CompilePattern; nil means not configured.
type SwitcherConfig struct {
	Role pactl.Role

	// VRPattern selects the headset endpoint. Required.
	VRPattern *regexp.Regexp

	// NormalPattern selects the desktop endpoint. Nil means the
	// server default at construction time.
	NormalPattern *regexp.Regexp

	// ExcludedClients are never moved.
	ExcludedClients []*regexp.Regexp

	// SetCardPort enables card profile switching before a move. Only
	// honored for the Output role.
	SetCardPort bool

	// VRPortPattern and NormalPortPattern match a port's product name.
	// Nil disables profile selection for that device type, leaving
	// only the suspend/resume rescan.
	VRPortPattern     *regexp.Regexp
	NormalPortPattern *regexp.Regexp

	// RescanPause is the time between suspend and resume when no
	// port matched.
	RescanPause time.Duration

	Failures FailurePolicy

	Clock  clock.Clock
	Logger *slog.Logger
}

// Switcher moves the connections of one role between the VR and the
// normal endpoint. Not safe for concurrent use.
type Switcher struct {
	directory Directory
	config    SwitcherConfig
	logger    *slog.Logger
	failures  *FailureTracker

	normal    pactl.Endpoint
	hasNormal bool
	vr        pactl.Endpoint
	hasVR     bool
}

// NewSwitcher resolves the normal and VR endpoints. An ambiguous
// pattern, a missing default endpoint, or a failed listing is an
// error. An endpoint that simply does not match is logged, and the
// corresponding switch is skipped until it appears.
func NewSwitcher(ctx context.Context, directory Directory, config SwitcherConfig) (*Switcher, error) {
	if config.VRPattern == nil {
		return nil, fmt.Errorf("vr %s pattern is required", config.Role)
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Switcher{
		directory: directory,
		config:    config,
		logger:    logger.With("role", config.Role.String()),
		failures:  NewFailureTracker(config.Clock, config.Failures),
	}

	normal, found, err := ResolveEndpoint(ctx, directory, config.Role, config.NormalPattern, string(Normal))
	if err != nil {
		return nil, err
	}
	if found {
		s.normal, s.hasNormal = normal, true
		s.logger.Debug("normal endpoint", "endpoint", normal.Name)
	} else {
		s.logger.Error("no normal endpoint matches", "pattern", config.NormalPattern.String())
	}

	vr, found, err := ResolveEndpoint(ctx, directory, config.Role, config.VRPattern, string(VR))
	if err != nil {
		return nil, err
	}
	if found {
		s.vr, s.hasVR = vr, true
		s.logger.Debug("vr endpoint", "endpoint", vr.Name)
	} else {
		s.logger.Error("no vr endpoint matches", "pattern", config.VRPattern.String())
	}
	return s, nil
}

// Role returns the role this Switcher manages.
func (s *Switcher) Role() pactl.Role {
	return s.config.Role
}

// Normal returns the normal endpoint resolved at construction.
func (s *Switcher) Normal() (pactl.Endpoint, bool) {
	return s.normal, s.hasNormal
}

// VR returns the most recently resolved VR endpoint.
func (s *Switcher) VR() (pactl.Endpoint, bool) {
	return s.vr, s.hasVR
}

// Failures exposes the tracker, for diagnostics and tests.
func (s *Switcher) Failures() *FailureTracker {
	return s.failures
}

// SwitchToVR re-resolves the VR endpoint and moves every eligible
// connection to it.
func (s *Switcher) SwitchToVR(ctx context.Context) error {
	vr, found, err := ResolveEndpoint(ctx, s.directory, s.config.Role, s.config.VRPattern, string(VR))
	if err != nil {
		return err
	}
	if !found {
		s.hasVR = false
		s.logger.Error("no vr endpoint matches, skipping switch", "pattern", s.config.VRPattern.String())
		return nil
	}
	if !s.hasVR || vr.Name != s.vr.Name {
		s.logger.Debug("new vr endpoint", "endpoint", vr.Name)
	}
	s.vr, s.hasVR = vr, true
	return s.SwitchTo(ctx, vr, VR)
}

// SwitchToNormal moves every eligible connection back to the normal
// endpoint.
func (s *Switcher) SwitchToNormal(ctx context.Context) error {
	if !s.hasNormal {
		s.logger.Error("no normal endpoint, skipping switch")
		return nil
	}
	return s.SwitchTo(ctx, s.normal, Normal)
}

// SwitchTo moves every eligible connection to endpoint. For outputs
// with card port switching enabled, the matching card profile is
// activated first, or the endpoint is suspended and resumed to force a
// port rescan.
func (s *Switcher) SwitchTo(ctx context.Context, endpoint pactl.Endpoint, deviceType DeviceType) error {
	if s.config.Role == pactl.Output && s.config.SetCardPort {
		if err := s.selectPort(ctx, endpoint, deviceType); err != nil {
			return err
		}
	}

	endpoints, err := s.directory.ListEndpoints(ctx, s.config.Role)
	if err != nil {
		return fmt.Errorf("verifying %s endpoint: %w", deviceType, err)
	}
	if !containsEndpoint(endpoints, endpoint.Name) {
		s.logger.Warn("endpoint no longer exists, skipping move",
			"endpoint", endpoint.Name, "command", s.config.Role.MoveCommand())
		return nil
	}

	connections, err := s.directory.ListConnections(ctx, s.config.Role)
	if err != nil {
		return fmt.Errorf("listing connections: %w", err)
	}
	ids := make([]uint32, len(connections))
	for i, connection := range connections {
		ids[i] = connection.ID
	}
	s.failures.Observe(ids)

	if err := s.directory.ResolveClientNames(ctx, connections); err != nil {
		return fmt.Errorf("resolving client names: %w", err)
	}

	for _, connection := range s.filterExcluded(connections) {
		if !s.failures.ShouldRetry(connection.ID) {
			continue
		}
		s.logger.Info("moving connection",
			"connection", connection.ID, "client", connection.ClientName, "endpoint", endpoint.Name)
		result := s.directory.MoveConnection(ctx, s.config.Role, connection.ID, endpoint.Name)
		if result.OK() {
			continue
		}
		record := s.failures.RecordFailure(connection.ID)
		s.logger.Error("moving connection failed",
			"command", result.Command(),
			"client", connection.ClientName,
			"count", record.Count,
			"exit_code", result.ExitCode,
			"stderr", result.Stderr)
		s.directory.Outputs().Dump(s.logger)
	}
	return nil
}

func (s *Switcher) filterExcluded(connections []pactl.Connection) []pactl.Connection {
	var kept []pactl.Connection
	for _, connection := range connections {
		if s.excluded(connection) {
			s.logger.Debug("client excluded", "connection", connection.ID, "client", connection.ClientName)
			continue
		}
		kept = append(kept, connection)
	}
	return kept
}

func (s *Switcher) excluded(connection pactl.Connection) bool {
	if connection.ClientName == "" {
		return false
	}
	for _, pattern := range s.config.ExcludedClients {
		if pattern.MatchString(connection.ClientName) {
			return true
		}
	}
	return false
}

// selectPort activates the profile of the port whose product matches
// deviceType's pattern, or falls back to a suspend/resume rescan of
// endpoint.
func (s *Switcher) selectPort(ctx context.Context, endpoint pactl.Endpoint, deviceType DeviceType) error {
	pattern := s.config.VRPortPattern
	if deviceType == Normal {
		pattern = s.config.NormalPortPattern
	}

	if pattern == nil {
		s.logger.Debug("port selection not configured", "device_type", string(deviceType))
	} else {
		cards, err := s.directory.ListCards(ctx)
		if err != nil {
			return fmt.Errorf("listing cards: %w", err)
		}
		port, found := FindPort(cards, pattern)
		switch {
		case !found:
			s.logger.Warn("no port matches product name pattern",
				"pattern", pattern.String(), "products", describeProducts(cards))
		case len(port.Profiles) == 0:
			s.logger.Warn("matching port is not part of any profile", "card", port.Card, "port", port.Name)
		default:
			result := s.directory.SetCardProfile(ctx, port.Card, port.Profiles[0].Name)
			if !result.OK() {
				s.logger.Error("setting card profile failed",
					"command", result.Command(), "exit_code", result.ExitCode, "stderr", result.Stderr)
			}
			return nil
		}
	}

	return s.rescan(ctx, endpoint)
}

// rescan suspends and resumes endpoint with a pause in between, which
// makes the server rediscover the ports of its card.
func (s *Switcher) rescan(ctx context.Context, endpoint pactl.Endpoint) error {
	if result := s.directory.SetSuspended(ctx, s.config.Role, endpoint.Name, true); !result.OK() {
		s.logger.Error("suspending endpoint failed",
			"command", result.Command(), "exit_code", result.ExitCode, "stderr", result.Stderr)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.config.Clock.After(s.config.RescanPause):
	}

	if result := s.directory.SetSuspended(ctx, s.config.Role, endpoint.Name, false); !result.OK() {
		s.logger.Error("resuming endpoint failed",
			"command", result.Command(), "exit_code", result.ExitCode, "stderr", result.Stderr)
	}
	return nil
}

func containsEndpoint(endpoints []pactl.Endpoint, name string) bool {
	for _, endpoint := range endpoints {
		if endpoint.Name == name {
			return true
		}
	}
	return false
}
