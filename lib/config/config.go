// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the configuration file when --config is not
// given.
const EnvironmentVariable = "VRSWITCH_CONFIG"

// Base station interface types.
const (
	BasestationV2      = "v2"
	BasestationCommand = "cmd"
)

// DefaultBluetoothInterface is the BlueZ adapter used for type v2.
const DefaultBluetoothInterface = "hci0"

// Config is the complete vrswitch configuration.
type Config struct {
	// DryRun turns every state-changing action into a logged no-op.
	// Listing commands and Bluetooth scans still run.
	DryRun bool `yaml:"dry_run"`

	Log         LogConfig         `yaml:"log"`
	Audio       AudioConfig       `yaml:"audio"`
	Basestation BasestationConfig `yaml:"basestation"`
	Daemon      DaemonConfig      `yaml:"daemon"`
}

// LogConfig configures the per-run log file.
type LogConfig struct {
	// Enabled writes a log file for every run. The console always gets
	// output regardless.
	Enabled bool `yaml:"enabled"`

	// Directory receives one file per run and a latest.log symlink.
	Directory string `yaml:"directory"`
}

// AudioConfig configures stream rerouting.
type AudioConfig struct {
	Enabled bool `yaml:"enabled"`

	// ChangeSink and ChangeSource select which roles are switched.
	ChangeSink   bool `yaml:"change_sink"`
	ChangeSource bool `yaml:"change_source"`

	// VRSinkRegex must match exactly one sink name. NormalSinkRegex may
	// be empty, meaning the server default at startup.
	VRSinkRegex     string `yaml:"vr_sink_regex"`
	NormalSinkRegex string `yaml:"normal_sink_regex"`

	VRSourceRegex     string `yaml:"vr_source_regex"`
	NormalSourceRegex string `yaml:"normal_source_regex"`

	// ExcludedClientsRegexes lists client names whose streams are
	// never moved.
	ExcludedClientsRegexes []string `yaml:"excluded_clients_regexes"`

	// SetCardPort activates the card profile of the port the headset
	// is plugged into before moving streams.
	SetCardPort bool `yaml:"set_card_port"`

	CardPortVRProductNameRegex     string `yaml:"card_port_vr_product_name_regex"`
	CardPortNormalProductNameRegex string `yaml:"card_port_normal_product_name_regex"`

	// CardRescanPauseTime is the pause between suspending and resuming
	// a sink when no port matched.
	CardRescanPauseTime Duration `yaml:"card_rescan_pause_time"`

	// FailureCeiling is the number of failed moves after which a
	// stream is abandoned.
	FailureCeiling int `yaml:"failure_ceiling"`

	// FailureCooldown is the minimum time between a failed move and
	// the next attempt.
	FailureCooldown Duration `yaml:"failure_cooldown"`
}

// BasestationConfig configures Lighthouse power control.
type BasestationConfig struct {
	Enabled bool `yaml:"enabled"`

	// Type is "v2" for direct Bluetooth control of version 2 base
	// stations, or "cmd" to run user-supplied commands.
	Type string `yaml:"type"`

	AttemptCountScan int `yaml:"attempt_count_scan"`
	AttemptCountSet  int `yaml:"attempt_count_set"`

	// BluetoothInterface is the BlueZ adapter. Only the default adapter,
	// DefaultBluetoothInterface, is supported.
	BluetoothInterface string   `yaml:"bluetooth_interface"`
	ScanTimeout        Duration `yaml:"scan_timeout"`

	Commands CommandsConfig `yaml:"commands"`
}

// CommandsConfig holds the argv run for each action when Type is "cmd".
type CommandsConfig struct {
	On  []string `yaml:"on"`
	Off []string `yaml:"off"`
}

// DaemonConfig configures the session lifecycle daemon.
type DaemonConfig struct {
	// WatchProcessName is the command name whose presence marks a
	// running VR session.
	WatchProcessName string `yaml:"watch_process_name"`

	WaitBeforeStart Duration `yaml:"wait_before_start"`
	WaitAfterQuit   Duration `yaml:"wait_after_quit"`
	TickInterval    Duration `yaml:"tick_interval"`

	// StateDirectory holds the daemon's lock and state files.
	StateDirectory string `yaml:"state_directory"`
}

// Duration is a time.Duration that unmarshals from Go duration syntax
// or from a bare number of seconds.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	if seconds, err := strconv.ParseFloat(node.Value, 64); err == nil {
		*d = Duration(seconds * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	stateRoot := filepath.Join(stateHome(), "vrswitch")
	return &Config{
		Log: LogConfig{
			Enabled:   true,
			Directory: filepath.Join(stateRoot, "log"),
		},
		Audio: AudioConfig{
			Enabled:                    true,
			ChangeSink:                 true,
			VRSinkRegex:                ".*hdmi.",
			SetCardPort:                true,
			CardPortVRProductNameRegex: "(Index HMD)|(VIVE)",
			CardRescanPauseTime:        Duration(10 * time.Second),
			FailureCeiling:             10,
			FailureCooldown:            Duration(500 * time.Millisecond),
		},
		Basestation: BasestationConfig{
			Type:               BasestationV2,
			AttemptCountScan:   5,
			AttemptCountSet:    5,
			BluetoothInterface: DefaultBluetoothInterface,
			ScanTimeout:        Duration(2 * time.Second),
		},
		Daemon: DaemonConfig{
			WatchProcessName: "vrcompositor",
			WaitBeforeStart:  Duration(60 * time.Second),
			WaitAfterQuit:    Duration(40 * time.Second),
			TickInterval:     Duration(time.Second),
			StateDirectory:   stateRoot,
		},
	}
}

// Resolve returns the configuration file to load. flagPath wins, then
// VRSWITCH_CONFIG, then the XDG location if the file exists. An empty
// result means "use defaults".
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if path := os.Getenv(EnvironmentVariable); path != "" {
		return path
	}
	path := DefaultPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

// DefaultPath is the XDG location of the configuration file.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "vrswitch", "config.yaml")
}

// Load resolves the configuration file for flagPath and loads it, or
// returns the defaults when there is none. The returned path is the
// file that was loaded, or "".
func Load(flagPath string) (*Config, string, error) {
	path := Resolve(flagPath)
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, "", nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFile overlays the file at path onto Default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.expandVariables()
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	checkPattern := func(key, pattern string) {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}

	if c.Audio.Enabled {
		if !c.Audio.ChangeSink && !c.Audio.ChangeSource {
			errs = append(errs, errors.New("audio: enabled but neither change_sink nor change_source is set"))
		}
		if c.Audio.ChangeSink && c.Audio.VRSinkRegex == "" {
			errs = append(errs, errors.New("audio.vr_sink_regex is required when change_sink is set"))
		}
		if c.Audio.ChangeSource && c.Audio.VRSourceRegex == "" {
			errs = append(errs, errors.New("audio.vr_source_regex is required when change_source is set"))
		}
		checkPattern("audio.vr_sink_regex", c.Audio.VRSinkRegex)
		checkPattern("audio.normal_sink_regex", c.Audio.NormalSinkRegex)
		checkPattern("audio.vr_source_regex", c.Audio.VRSourceRegex)
		checkPattern("audio.normal_source_regex", c.Audio.NormalSourceRegex)
		checkPattern("audio.card_port_vr_product_name_regex", c.Audio.CardPortVRProductNameRegex)
		checkPattern("audio.card_port_normal_product_name_regex", c.Audio.CardPortNormalProductNameRegex)
		for i, pattern := range c.Audio.ExcludedClientsRegexes {
			checkPattern(fmt.Sprintf("audio.excluded_clients_regexes[%d]", i), pattern)
		}
		if c.Audio.CardRescanPauseTime < 0 {
			errs = append(errs, errors.New("audio.card_rescan_pause_time must not be negative"))
		}
		if c.Audio.FailureCeiling < 0 {
			errs = append(errs, errors.New("audio.failure_ceiling must not be negative"))
		}
		if c.Audio.FailureCooldown < 0 {
			errs = append(errs, errors.New("audio.failure_cooldown must not be negative"))
		}
	}

	if c.Basestation.Enabled {
		switch c.Basestation.Type {
		case BasestationV2:
			if c.Basestation.BluetoothInterface != DefaultBluetoothInterface {
				errs = append(errs, fmt.Errorf("basestation.bluetooth_interface: only %s is supported (got %q)",
					DefaultBluetoothInterface, c.Basestation.BluetoothInterface))
			}
			if c.Basestation.ScanTimeout <= 0 {
				errs = append(errs, errors.New("basestation.scan_timeout must be positive"))
			}
		case BasestationCommand:
			if len(c.Basestation.Commands.On) == 0 && len(c.Basestation.Commands.Off) == 0 {
				errs = append(errs, errors.New("basestation.commands: type cmd needs an on or off command"))
			}
		default:
			errs = append(errs, fmt.Errorf("basestation.type must be one of: %s, %s (got %q)",
				BasestationV2, BasestationCommand, c.Basestation.Type))
		}
		if c.Basestation.AttemptCountScan < 1 {
			errs = append(errs, errors.New("basestation.attempt_count_scan must be at least 1"))
		}
		if c.Basestation.AttemptCountSet < 1 {
			errs = append(errs, errors.New("basestation.attempt_count_set must be at least 1"))
		}
	}

	if c.Daemon.WatchProcessName == "" {
		errs = append(errs, errors.New("daemon.watch_process_name is required"))
	}
	if c.Daemon.WaitBeforeStart <= 0 {
		errs = append(errs, errors.New("daemon.wait_before_start must be positive"))
	}
	if c.Daemon.WaitAfterQuit <= 0 {
		errs = append(errs, errors.New("daemon.wait_after_quit must be positive"))
	}
	if c.Daemon.TickInterval <= 0 {
		errs = append(errs, errors.New("daemon.tick_interval must be positive"))
	}
	if c.Daemon.StateDirectory == "" {
		errs = append(errs, errors.New("daemon.state_directory is required"))
	}
	if c.Log.Enabled && c.Log.Directory == "" {
		errs = append(errs, errors.New("log.directory is required when logging is enabled"))
	}

	return errors.Join(errs...)
}

// EnsurePaths creates the state and log directories.
func (c *Config) EnsurePaths() error {
	paths := []string{c.Daemon.StateDirectory}
	if c.Log.Enabled {
		paths = append(paths, c.Log.Directory)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
	}
	return nil
}

// stateHome is $XDG_STATE_HOME, or ~/.local/state.
func stateHome() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return base
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state")
}

// expandVariables expands "~/" and ${VAR} patterns in path fields.
func (c *Config) expandVariables() {
	c.Log.Directory = expandPath(c.Log.Directory)
	c.Daemon.StateDirectory = expandPath(c.Daemon.StateDirectory)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, rest)
	}
	return varPattern.ReplaceAllStringFunc(path, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}
