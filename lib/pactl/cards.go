// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"fmt"
	"strings"
)

// node is one line of "pactl list cards" output with the lines indented
// beneath it.
type node struct {
	level    int
	text     string
	children []*node
}

// child returns the first child whose text equals text.
func (n *node) child(text string) *node {
	for _, c := range n.children {
		if c.text == text {
			return c
		}
	}
	return nil
}

// parseTree builds the indentation tree of a pactl long listing. A line
// indented deeper than its predecessor is that predecessor's child.
func parseTree(output string) *node {
	root := &node{level: -1}
	stack := []*node{root}
	for _, line := range strings.Split(output, "\n") {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		current := &node{
			level: len(line) - len(strings.TrimLeft(line, " \t")),
			text:  text,
		}
		for len(stack) > 1 && stack[len(stack)-1].level >= current.level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.children = append(parent.children, current)
		stack = append(stack, current)
	}
	return root
}

// parseCards turns "pactl list cards" output into Cards. A card block
// without a Name or without a Ports section is an error: it means the
// output format is not the one this parser understands.
func parseCards(output string) ([]Card, error) {
	var cards []Card
	for _, block := range parseTree(output).children {
		card, err := parseCard(block)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, nil
}

func parseCard(block *node) (Card, error) {
	var card Card
	var portsNode *node
	for _, item := range block.children {
		switch {
		case strings.HasPrefix(item.text, "Name: "):
			card.Name = strings.TrimPrefix(item.text, "Name: ")
		case item.text == "Profiles:":
			for _, entry := range item.children {
				if profile, ok := parseProfile(entry.text); ok {
					card.Profiles = append(card.Profiles, profile)
				}
			}
		case item.text == "Ports:":
			portsNode = item
		}
	}
	if card.Name == "" || portsNode == nil {
		return Card{}, fmt.Errorf("parsing card %q: missing Name or Ports section", block.text)
	}

	// Ports reference profiles by name, so they are parsed after the
	// Profiles section regardless of the order pactl prints them in.
	for _, entry := range portsNode.children {
		card.Ports = append(card.Ports, parsePort(entry, card))
	}
	return card, nil
}

// parseProfile parses "name: Description (sinks: 1, ...)".
func parseProfile(text string) (Profile, bool) {
	name, rest, ok := strings.Cut(text, ": ")
	if !ok || name == "" || strings.Contains(name, " ") {
		return Profile{}, false
	}
	description := rest
	if open := strings.LastIndex(rest, " ("); open >= 0 && strings.HasSuffix(rest, ")") {
		description = rest[:open]
	}
	return Profile{Name: name, Description: description}, true
}

func parsePort(entry *node, card Card) Port {
	name, _, _ := strings.Cut(entry.text, ": ")
	port := Port{Name: name, Card: card.Name}

	if properties := entry.child("Properties:"); properties != nil {
		for _, property := range properties.children {
			if value, ok := strings.CutPrefix(property.text, `device.product.name = "`); ok {
				port.ProductName = strings.TrimSuffix(value, `"`)
			}
		}
	}

	for _, item := range entry.children {
		list, ok := strings.CutPrefix(item.text, "Part of profile(s): ")
		if !ok {
			continue
		}
		for _, profileName := range strings.Split(list, ", ") {
			for _, profile := range card.Profiles {
				if profile.Name == profileName {
					port.Profiles = append(port.Profiles, profile)
					break
				}
			}
		}
	}
	return port
}
