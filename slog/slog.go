// Package slog provides the structured logger and logging decorators for
// the spyder services.
package slog

import (
	"io"
	"log/slog"
	"strings"

	"github.com/fwojciec/spyder"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewLogger creates a logger writing to w at the named level (debug, info,
// warn or error) in the named format (text or json).
// Returns ECONFIG for an unknown level or format.
func NewLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, spyder.Errorf(spyder.ECONFIG, "invalid log.level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case FormatText, "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, spyder.Errorf(spyder.ECONFIG, "invalid log.format %q (expected text or json)", format)
}

// levelFor returns the level for an operation outcome: failures are
// warnings, everything else is debug output.
func levelFor(err error) slog.Level {
	if err != nil {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}
