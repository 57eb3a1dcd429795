// Package logging configures the process-wide slog logger.
//
// Diagnostics go to stderr so they never interleave with the run output and
// reports written to stdout and the output directory.
package logging

import (
	"log/slog"
	"os"
)

// Setup installs the default logger. Verbose lowers the level to Debug,
// which surfaces per-folder skip reasons and subprocess stderr.
func Setup(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
