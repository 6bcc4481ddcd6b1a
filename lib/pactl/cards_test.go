// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package pactl

import (
	"reflect"
	"testing"
)

// cardsOutput is trimmed "pactl list cards" output from a machine with
// an onboard codec and a GPU whose HDMI port has a headset attached.
const cardsOutput = `Card #47
	Name: alsa_card.pci-0000_00_1f.3
	Driver: module-alsa-card.c
	Owner Module: 7
	Properties:
		alsa.card = "0"
		device.product.name = "Cannon Lake PCH cAVS"
	Profiles:
		output:analog-stereo: Analog Stereo Output (sinks: 1, sources: 0, priority: 6500, available: yes)
		off: Off (sinks: 0, sources: 0, priority: 0, available: yes)
	Active Profile: output:analog-stereo
	Ports:
		analog-output-headphones: Headphones (type: Headphones, priority: 9900, latency offset: 0 usec, availability group: Legacy 2, not available)
			Properties:
				device.icon_name = "audio-headphones"
			Part of profile(s): output:analog-stereo
Card #48
	Name: alsa_card.pci-0000_01_00.1
	Driver: module-alsa-card.c
	Profiles:
		output:hdmi-stereo: Digital Stereo (HDMI) Output (sinks: 1, sources: 0, priority: 5900, available: yes)
		output:hdmi-stereo-extra1: Digital Stereo (HDMI 2) Output (sinks: 1, sources: 0, priority: 5700, available: no)
		off: Off (sinks: 0, sources: 0, priority: 0, available: yes)
	Active Profile: off
	Ports:
		hdmi-output-0: HDMI / DisplayPort (type: HDMI, priority: 5900, latency offset: 0 usec, availability group: Legacy 3, available)
			Properties:
				device.icon_name = "video-display"
				device.product.name = "Index HMD"
			Part of profile(s): output:hdmi-stereo
		hdmi-output-1: HDMI / DisplayPort 2 (type: HDMI, priority: 5800, latency offset: 0 usec, availability group: Legacy 4, not available)
			Part of profile(s): output:hdmi-stereo-extra1, missing-profile
`

func TestParseCards(t *testing.T) {
	cards, err := parseCards(cardsOutput)
	if err != nil {
		t.Fatalf("parseCards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("parsed %d cards, want 2", len(cards))
	}

	onboard := cards[0]
	if onboard.Name != "alsa_card.pci-0000_00_1f.3" {
		t.Errorf("card 0 name = %q", onboard.Name)
	}
	wantProfiles := []Profile{
		{Name: "output:analog-stereo", Description: "Analog Stereo Output"},
		{Name: "off", Description: "Off"},
	}
	if !reflect.DeepEqual(onboard.Profiles, wantProfiles) {
		t.Errorf("card 0 profiles = %+v, want %+v", onboard.Profiles, wantProfiles)
	}
	if len(onboard.Ports) != 1 || onboard.Ports[0].ProductName != "" {
		t.Errorf("card 0 ports = %+v, want one port without product name", onboard.Ports)
	}

	gpu := cards[1]
	if len(gpu.Ports) != 2 {
		t.Fatalf("card 1 has %d ports, want 2", len(gpu.Ports))
	}
	headset := gpu.Ports[0]
	if headset.Name != "hdmi-output-0" {
		t.Errorf("port name = %q, want hdmi-output-0", headset.Name)
	}
	if headset.ProductName != "Index HMD" {
		t.Errorf("product name = %q, want Index HMD", headset.ProductName)
	}
	if headset.Card != "alsa_card.pci-0000_01_00.1" {
		t.Errorf("port card = %q", headset.Card)
	}
	if len(headset.Profiles) != 1 || headset.Profiles[0].Name != "output:hdmi-stereo" {
		t.Errorf("port profiles = %+v, want [output:hdmi-stereo]", headset.Profiles)
	}

	// Unknown profile names are dropped, known ones keep their order.
	second := gpu.Ports[1]
	if len(second.Profiles) != 1 || second.Profiles[0].Name != "output:hdmi-stereo-extra1" {
		t.Errorf("second port profiles = %+v", second.Profiles)
	}
}

func TestParseCardsRejectsUnknownFormat(t *testing.T) {
	if _, err := parseCards("Card #0\n\tDriver: x\n"); err == nil {
		t.Fatal("parseCards accepted a card block without Name and Ports")
	}
}

func TestParseTreeNesting(t *testing.T) {
	root := parseTree("a\n  b\n    c\n  d\ne\n")
	if len(root.children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.children))
	}
	a := root.children[0]
	if len(a.children) != 2 || a.children[0].text != "b" || a.children[1].text != "d" {
		t.Fatalf("a children = %+v", a.children)
	}
	if len(a.children[0].children) != 1 || a.children[0].children[0].text != "c" {
		t.Errorf("b children = %+v", a.children[0].children)
	}
}
