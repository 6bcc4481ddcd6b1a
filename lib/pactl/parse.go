// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"fmt"
	"strconv"
	"strings"
)

// noClient is how "list short" marks a stream without an owning client.
// Older servers print "-", some PipeWire versions print "none".
func noClient(field string) bool {
	return field == "-" || field == "none" || field == ""
}

// shortLines splits "pactl list short" output into tab-separated
// records, skipping blank lines.
func shortLines(stdout string) [][]string {
	var records [][]string
	for _, line := range strings.Split(stdout, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		records = append(records, strings.Split(line, "\t"))
	}
	return records
}

func parseEndpoints(stdout string, role Role) ([]Endpoint, error) {
	var endpoints []Endpoint
	for _, fields := range shortLines(stdout) {
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed %s line %q", role, strings.Join(fields, "\t"))
		}
		endpoints = append(endpoints, Endpoint{Name: fields[1], Role: role})
	}
	return endpoints, nil
}

func parseConnections(stdout string) ([]Connection, error) {
	var connections []Connection
	for _, fields := range shortLines(stdout) {
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed connection line %q", strings.Join(fields, "\t"))
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing connection id %q: %w", fields[0], err)
		}
		connection := Connection{ID: uint32(id)}
		if !noClient(fields[2]) {
			clientID, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("parsing client id %q of connection %d: %w", fields[2], id, err)
			}
			connection.HasClient = true
			connection.ClientID = uint32(clientID)
		}
		connections = append(connections, connection)
	}
	return connections, nil
}

func parseClients(stdout string) ([]ClientInfo, error) {
	var clients []ClientInfo
	for _, fields := range shortLines(stdout) {
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed client line %q", strings.Join(fields, "\t"))
		}
		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parsing client id %q: %w", fields[0], err)
		}
		clients = append(clients, ClientInfo{ID: uint32(id), Name: fields[2]})
	}
	return clients, nil
}

// parseDefault extracts the default endpoint name for role from
// "pactl info" output. Returns "" when the server reports none.
func parseDefault(stdout string, role Role) string {
	label := role.defaultLabel()
	for _, line := range strings.Split(stdout, "\n") {
		if name, ok := strings.CutPrefix(line, label); ok {
			return strings.TrimSpace(name)
		}
	}
	return ""
}
