// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging holds the structured logger shared by the pipeline stages.
//
// Diagnostic events (PSD corrections, stage timings, ledger writes) go through
// slog so they can be switched to JSON for machine consumption:
//
//	logging.Warn("target matrix corrected", "policy", "clip", "min_eigenvalue", ev)
//
// Progress lines meant for a person running the CLI are written by the
// commands themselves with fmt.Fprintf, not through this package.
package logging

import (
	"io"
	"log/slog"
	"os"
)

var (
	// Logger is the process-wide structured logger.
	Logger *slog.Logger

	// Verbose enables debug events.
	Verbose bool
)

func init() {
	Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// Setup replaces Logger. A nil writer means stderr.
func Setup(verbose, jsonOutput bool, w io.Writer) {
	Verbose = verbose

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if w == nil {
		w = os.Stderr
	}

	if jsonOutput {
		Logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		Logger = slog.New(slog.NewTextHandler(w, opts))
	}
}

// Debug logs a debug event.
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info event.
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning event.
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error event.
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}

// With returns a child logger with additional attributes.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}
