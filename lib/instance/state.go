// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	stateFileName = "daemon.json"
	lockFileName  = "daemon.lock"
)

// StatePath returns the state file location inside directory.
func StatePath(directory string) string {
	return filepath.Join(directory, stateFileName)
}

// LockPath returns the lock file location inside directory.
func LockPath(directory string) string {
	return filepath.Join(directory, lockFileName)
}

// State describes a running daemon.
type State struct {
	// PID is the daemon's process id.
	PID int `json:"pid"`

	// RunID identifies one daemon run across its log lines.
	RunID string `json:"run_id"`

	// Stage is the lifecycle stage name ("before_session", ...).
	Stage string `json:"stage"`

	// Since is when the daemon entered Stage.
	Since time.Time `json:"since"`

	// Started is when the daemon process started.
	Started time.Time `json:"started"`

	// ConfigPath is the configuration file the daemon loaded, or empty
	// when it runs on defaults.
	ConfigPath string `json:"config_path,omitempty"`

	// LogPath is the daemon's log file, or empty when file logging is
	// disabled.
	LogPath string `json:"log_path,omitempty"`
}

// Write atomically replaces the state file at path. The parent
// directory must already exist.
func Write(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling daemon state: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary state file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary state file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming state file into place: %w", err)
	}

	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}
	return nil
}

// Read parses the state file at path. A missing file returns an error
// wrapping os.ErrNotExist.
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	if state.PID <= 0 {
		return State{}, fmt.Errorf("state file %s has no pid", path)
	}
	return state, nil
}

// Clear removes the state file. Returns nil when it does not exist.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file: %w", err)
	}
	return nil
}
