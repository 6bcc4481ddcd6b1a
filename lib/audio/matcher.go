// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package audio

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/vrswitch/vrswitch/lib/pactl"
)

var (
	// ErrAmbiguousMatch is returned when a pattern matches more than
	// one endpoint. The operator must narrow the pattern.
	ErrAmbiguousMatch = errors.New("pattern matches more than one endpoint")

	// ErrDefaultMissing is returned when no normal pattern is
	// configured and the server's default endpoint cannot be found.
	ErrDefaultMissing = errors.New("default endpoint not found")
)

// CompilePattern compiles a user-supplied regular expression anchored at
// the start of the subject. An empty pattern compiles to nil, meaning
// "not configured".
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	compiled, err := regexp.Compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, fmt.Errorf("compiling pattern %q: %w", pattern, err)
	}
	return compiled, nil
}

// CompilePatterns compiles every pattern with CompilePattern, skipping
// empty ones.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	var compiled []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := CompilePattern(pattern)
		if err != nil {
			return nil, err
		}
		if re != nil {
			compiled = append(compiled, re)
		}
	}
	return compiled, nil
}

// FindEndpoint returns the single endpoint whose name matches pattern.
// found is false when nothing matches; the caller logs and skips. More
// than one match returns ErrAmbiguousMatch naming every candidate.
func FindEndpoint(endpoints []pactl.Endpoint, pattern *regexp.Regexp, label string) (endpoint pactl.Endpoint, found bool, err error) {
	var matches []pactl.Endpoint
	for _, candidate := range endpoints {
		if pattern.MatchString(candidate.Name) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return pactl.Endpoint{}, false, nil
	case 1:
		return matches[0], true, nil
	default:
		names := make([]string, len(matches))
		for i, match := range matches {
			names[i] = match.Name
		}
		return pactl.Endpoint{}, false, fmt.Errorf("%s %s pattern %q matches %s: %w",
			label, matches[0].Role, pattern, strings.Join(names, ", "), ErrAmbiguousMatch)
	}
}

// ResolveEndpoint finds the endpoint for label among a fresh listing.
// A nil pattern means "the server's current default", which must exist.
func ResolveEndpoint(ctx context.Context, directory Directory, role pactl.Role, pattern *regexp.Regexp, label string) (pactl.Endpoint, bool, error) {
	endpoints, err := directory.ListEndpoints(ctx, role)
	if err != nil {
		return pactl.Endpoint{}, false, fmt.Errorf("resolving %s %s: %w", label, role, err)
	}
	if pattern != nil {
		return FindEndpoint(endpoints, pattern, label)
	}

	defaultName, err := directory.DefaultEndpointName(ctx, role)
	if err != nil {
		return pactl.Endpoint{}, false, fmt.Errorf("resolving default %s: %w", role, err)
	}
	for _, endpoint := range endpoints {
		if defaultName != "" && endpoint.Name == defaultName {
			return endpoint, true, nil
		}
	}
	return pactl.Endpoint{}, false, fmt.Errorf("%s %s %q (set normal_%s_regex to work around): %w",
		label, role, defaultName, role, ErrDefaultMissing)
}

// FindPort returns the first port, in card order, whose product name
// matches pattern. Ports without a product name never match.
func FindPort(cards []pactl.Card, pattern *regexp.Regexp) (pactl.Port, bool) {
	for _, card := range cards {
		for _, port := range card.Ports {
			if port.ProductName != "" && pattern.MatchString(port.ProductName) {
				return port, true
			}
		}
	}
	return pactl.Port{}, false
}

// describeProducts lists the product name at every port of every card,
// for the diagnostic logged when no port matches.
func describeProducts(cards []pactl.Card) string {
	var builder strings.Builder
	for _, card := range cards {
		builder.WriteString(card.Name)
		builder.WriteByte('\n')
		for _, port := range card.Ports {
			name := port.ProductName
			if name == "" {
				name = "-"
			}
			builder.WriteString("    ")
			builder.WriteString(name)
			builder.WriteByte('\n')
		}
	}
	return builder.String()
}
