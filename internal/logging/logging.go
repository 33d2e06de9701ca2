// Package logging builds the structured logger shared by the runner components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/mattn/go-isatty"
)

// ParseLevel maps a level name to a log level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "info", "":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	case "crit":
		return log.LevelCrit, nil
	default:
		return log.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

// New returns a terminal logger writing to w at the given level.
// Color is enabled when w is a terminal.
func New(w io.Writer, level string) (log.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	useColor := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(w, lvl, useColor)), nil
}

// Discard returns a logger that drops everything, used by tests
func Discard() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}
