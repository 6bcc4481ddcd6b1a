// Copyright 2026 The vrswitch Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the slog handler chain used by the vrswitch
// binary: a debug-level text log file per run, plus an info-level
// console handler that writes text to terminals and JSON elsewhere.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/term"
)

// FileTimeLayout names per-run log files.
const FileTimeLayout = "2006-01-02_15-04-05"

// LatestName is the symlink that points at the newest run's log file.
const LatestName = "latest.log"

// Options configures Setup.
type Options struct {
	// Directory receives the per-run log file. Empty disables file
	// logging.
	Directory string

	// Console receives info-level records. Nil disables console
	// output, as for a detached daemon.
	Console io.Writer

	// ConsoleLevel overrides the console threshold. Zero is info.
	ConsoleLevel slog.Level

	// Started names the log file. Zero means now.
	Started time.Time
}

// Output is a configured logger and the file behind it.
type Output struct {
	Logger *slog.Logger

	// Path is the per-run log file, or empty when file logging is off.
	Path string

	file *os.File
}

// Close flushes and closes the log file.
func (o *Output) Close() error {
	if o.file == nil {
		return nil
	}
	if err := o.file.Sync(); err != nil {
		o.file.Close()
		return err
	}
	return o.file.Close()
}

// Setup creates the log directory and file, points latest.log at it,
// and returns a logger that fans out to the file and console handlers.
// With neither configured the logger discards everything.
func Setup(options Options) (*Output, error) {
	output := &Output{}
	var handlers []slog.Handler

	if options.Directory != "" {
		started := options.Started
		if started.IsZero() {
			started = time.Now()
		}
		if err := os.MkdirAll(options.Directory, 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		path := filepath.Join(options.Directory, started.Format(FileTimeLayout)+".log")
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		if err := linkLatest(options.Directory, filepath.Base(path)); err != nil {
			file.Close()
			return nil, err
		}
		output.Path = path
		output.file = file
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if options.Console != nil {
		handlers = append(handlers, ConsoleHandler(options.Console, options.ConsoleLevel))
	}

	switch len(handlers) {
	case 0:
		output.Logger = slog.New(slog.DiscardHandler)
	case 1:
		output.Logger = slog.New(handlers[0])
	default:
		output.Logger = slog.New(fanout(handlers))
	}
	return output, nil
}

// ConsoleHandler returns a text handler when w is a terminal and a JSON
// handler otherwise.
func ConsoleHandler(w io.Writer, level slog.Level) slog.Handler {
	options := &slog.HandlerOptions{Level: level}
	if IsTerminal(w) {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(file.Fd()))
}

func linkLatest(directory, target string) error {
	link := filepath.Join(directory, LatestName)
	if err := os.Remove(link); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", link, err)
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("linking %s: %w", link, err)
	}
	return nil
}

// fanout delivers each record to every handler enabled for its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range f {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range f {
		if !handler.Enabled(ctx, record.Level) {
			continue
		}
		if err := handler.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanout, len(f))
	for i, handler := range f {
		derived[i] = handler.WithAttrs(attrs)
	}
	return derived
}

func (f fanout) WithGroup(name string) slog.Handler {
	derived := make(fanout, len(f))
	for i, handler := range f {
		derived[i] = handler.WithGroup(name)
	}
	return derived
}
