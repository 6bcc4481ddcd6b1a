// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
)

// Client issues pactl commands through a Runner.
type Client struct {
	runner  Runner
	dryRun  bool
	logger  *slog.Logger
	outputs *OutputLog
}

// Options configures a Client.
type Options struct {
	// DryRun replaces every mutation with a logged no-op that reports
	// success. Queries still run.
	DryRun bool

	Logger *slog.Logger
}

// NewClient returns a Client that runs commands through runner.
func NewClient(runner Runner, options Options) *Client {
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		runner:  runner,
		dryRun:  options.DryRun,
		logger:  logger,
		outputs: NewOutputLog(),
	}
}

// Outputs returns the log of query outputs collected by this Client.
func (c *Client) Outputs() *OutputLog {
	return c.outputs
}

// DryRun reports whether mutations are suppressed.
func (c *Client) DryRun() bool {
	return c.dryRun
}

// query runs a read-only command. A non-zero exit is returned as a
// *CommandError. Successful output is recorded in the OutputLog, and
// logged at debug level the first time a command is seen.
func (c *Client) query(ctx context.Context, args ...string) (string, error) {
	result := c.runner.Run(ctx, args...)
	if !result.OK() {
		return "", &CommandError{Result: result}
	}
	if c.outputs.Add(result.Command(), result.Stdout) {
		c.logger.Debug("pactl output", "command", result.Command(), "stdout", result.Stdout)
	}
	return result.Stdout, nil
}

// mutate runs a state-changing command, or logs and skips it in dry-run
// mode.
func (c *Client) mutate(ctx context.Context, args ...string) Result {
	if c.dryRun {
		skipped := Result{Args: args}
		c.logger.Warn("dry run, skipping pactl command", "command", skipped.Command())
		return skipped
	}
	return c.runner.Run(ctx, args...)
}

// ListEndpoints returns every sink (Output) or source (Input).
func (c *Client) ListEndpoints(ctx context.Context, role Role) ([]Endpoint, error) {
	stdout, err := c.query(ctx, "list", "short", role.endpointList())
	if err != nil {
		return nil, err
	}
	endpoints, err := parseEndpoints(stdout, role)
	if err != nil {
		return nil, fmt.Errorf("listing %ss: %w", role, err)
	}
	return endpoints, nil
}

// ListConnections returns every sink-input (Output) or source-output
// (Input). Client names are not resolved.
func (c *Client) ListConnections(ctx context.Context, role Role) ([]Connection, error) {
	stdout, err := c.query(ctx, "list", "short", role.connectionList())
	if err != nil {
		return nil, err
	}
	connections, err := parseConnections(stdout)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", role.connectionList(), err)
	}
	return connections, nil
}

// ListClients returns every client connected to the server.
func (c *Client) ListClients(ctx context.Context) ([]ClientInfo, error) {
	stdout, err := c.query(ctx, "list", "short", "clients")
	if err != nil {
		return nil, err
	}
	clients, err := parseClients(stdout)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	return clients, nil
}

// ResolveClientNames fills ClientName for every connection in place.
// Connections without a client, or whose client has already gone away,
// keep an empty name.
func (c *Client) ResolveClientNames(ctx context.Context, connections []Connection) error {
	clients, err := c.ListClients(ctx)
	if err != nil {
		return err
	}
	names := make(map[uint32]string, len(clients))
	for _, client := range clients {
		names[client.ID] = client.Name
	}
	for i := range connections {
		if !connections[i].HasClient {
			continue
		}
		connections[i].ClientName = names[connections[i].ClientID]
	}
	return nil
}

// DefaultEndpointName returns the server's default sink or source as
// reported by "pactl info". Returns "" when none is reported.
func (c *Client) DefaultEndpointName(ctx context.Context, role Role) (string, error) {
	stdout, err := c.query(ctx, "info")
	if err != nil {
		return "", err
	}
	return parseDefault(stdout, role), nil
}

// ListCards returns every card with its profiles and ports.
func (c *Client) ListCards(ctx context.Context) ([]Card, error) {
	stdout, err := c.query(ctx, "list", "cards")
	if err != nil {
		return nil, err
	}
	return parseCards(stdout)
}

// MoveConnection rebinds connection id to the named endpoint.
func (c *Client) MoveConnection(ctx context.Context, role Role, id uint32, endpoint string) Result {
	return c.mutate(ctx, role.MoveCommand(), strconv.FormatUint(uint64(id), 10), endpoint)
}

// SetSuspended suspends or resumes the named endpoint. A suspend and
// resume with a pause in between makes the server rescan the ports of
// the underlying card.
func (c *Client) SetSuspended(ctx context.Context, role Role, endpoint string, suspended bool) Result {
	return c.mutate(ctx, role.suspendCommand(), endpoint, strconv.FormatBool(suspended))
}

// SetCardProfile activates profile on card.
func (c *Client) SetCardProfile(ctx context.Context, card, profile string) Result {
	return c.mutate(ctx, "set-card-profile", card, profile)
}
