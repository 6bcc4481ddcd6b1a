// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDesktopFiles(t *testing.T) {
	directory := filepath.Join(t.TempDir(), "applications")
	paths, err := writeDesktopFiles(directory, "/usr/bin/vrswitch", "")
	if err != nil {
		t.Fatalf("writeDesktopFiles: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("wrote %d files, want 2", len(paths))
	}
	for _, action := range []string{"on", "off"} {
		data, err := os.ReadFile(filepath.Join(directory, "vrswitch_"+action+".desktop"))
		if err != nil {
			t.Fatalf("reading %s entry: %v", action, err)
		}
		content := string(data)
		for _, want := range []string{
			"[Desktop Entry]",
			"Name=vrswitch " + action,
			"Exec=/usr/bin/vrswitch " + action + "\n",
			"Type=Application",
		} {
			if !strings.Contains(content, want) {
				t.Errorf("%s entry missing %q:\n%s", action, want, content)
			}
		}
	}
}

func TestLaunchOptions(t *testing.T) {
	tests := []struct {
		executable string
		configPath string
		want       string
	}{
		{"/usr/bin/vrswitch", "", "/usr/bin/vrswitch daemon; %command%"},
		{"/usr/bin/vrswitch", "/home/user/vr.yaml", "/usr/bin/vrswitch daemon --config /home/user/vr.yaml; %command%"},
		{"/home/user/my tools/vrswitch", "", `"/home/user/my tools/vrswitch" daemon; %command%`},
	}
	for _, test := range tests {
		if got := launchOptions(test.executable, test.configPath); got != test.want {
			t.Errorf("launchOptions(%q, %q) = %q, want %q", test.executable, test.configPath, got, test.want)
		}
	}
}

func TestQuoteArgument(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"/usr/bin/vrswitch", "/usr/bin/vrswitch"},
		{"", `""`},
		{"a b", `"a b"`},
		{`cost$1`, `"cost\$1"`},
		{`say "hi"`, `"say \"hi\""`},
	}
	for _, test := range tests {
		if got := quoteArgument(test.input); got != test.want {
			t.Errorf("quoteArgument(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}
