// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/vrswitch/vrswitch/cmd/vrswitch/cli"
)

type installParams struct {
	ConfigPath            string
	ApplicationsDirectory string
}

func installCommand() *cli.Command {
	var params installParams
	return &cli.Command{
		Name:    "install",
		Summary: "Add desktop launchers and print the SteamVR launch options",
		Description: `Write "vrswitch on" and "vrswitch off" desktop entries so they show up in
the application menu, and print the launch options that start the
daemon together with SteamVR.`,
		Usage: "vrswitch install [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("install", pflag.ContinueOnError)
			flagSet.StringVar(&params.ConfigPath, "config", "", "configuration file the launchers pass to vrswitch")
			flagSet.StringVar(&params.ApplicationsDirectory, "applications-dir", defaultApplicationsDirectory(),
				"directory for the .desktop files")
			return flagSet
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locating vrswitch executable: %w", err)
			}
			if resolved, err := filepath.EvalSymlinks(executable); err == nil {
				executable = resolved
			}
			paths, err := writeDesktopFiles(params.ApplicationsDirectory, executable, params.ConfigPath)
			if err != nil {
				return err
			}
			for _, path := range paths {
				logger.Info("wrote desktop entry", "path", path)
			}
			fmt.Fprintf(os.Stdout, "Paste the following into the SteamVR launch options\n"+
				"(Library, right click SteamVR, Properties..., General, Launch Options):\n\n  %s\n",
				launchOptions(executable, params.ConfigPath))
			return nil
		},
	}
}

func defaultApplicationsDirectory() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "applications")
}

// writeDesktopFiles writes vrswitch_on.desktop and vrswitch_off.desktop
// into directory and returns their paths.
func writeDesktopFiles(directory, executable, configPath string) ([]string, error) {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", directory, err)
	}
	var paths []string
	for _, action := range []string{"on", "off"} {
		path := filepath.Join(directory, "vrswitch_"+action+".desktop")
		if err := os.WriteFile(path, []byte(desktopEntry(action, executable, configPath)), 0644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func desktopEntry(action, executable, configPath string) string {
	return fmt.Sprintf(`[Desktop Entry]
Name=vrswitch %s
GenericName=VR session switcher
Keywords=VR;Base Station;Lighthouse;Audio
Exec=%s
Terminal=false
Type=Application
Icon=%s
`, action, commandLine(executable, configPath, action), "audio-headset")
}

// launchOptions starts the daemon ahead of SteamVR itself.
func launchOptions(executable, configPath string) string {
	return commandLine(executable, configPath, "daemon") + "; %command%"
}

func commandLine(executable, configPath, action string) string {
	words := []string{quoteArgument(executable), action}
	if configPath != "" {
		words = append(words, "--config", quoteArgument(configPath))
	}
	return strings.Join(words, " ")
}

// quoteArgument double-quotes s when it holds characters a desktop
// entry Exec key or a shell would split or expand.
func quoteArgument(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n\"'\\$`;&|<>*?()#~") {
		return s
	}
	var builder strings.Builder
	builder.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '`', '$', '\\':
			builder.WriteByte('\\')
		}
		builder.WriteRune(r)
	}
	builder.WriteByte('"')
	return builder.String()
}
