// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// LogLevelVariable names the environment variable that sets the log
// level ("debug", "info", "warn", "error").
const LogLevelVariable = "BLTE_LOG_LEVEL"

// NewCommandLogger creates the structured logger for CLI commands.
// When stderr is a terminal it uses slog.TextHandler for human
// reading; when stderr is piped or redirected it uses
// slog.JSONHandler so batch runs produce machine-parseable logs.
func NewCommandLogger() *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), os.Getenv(LogLevelVariable))
}

func newLogger(output io.Writer, terminal bool, levelName string) *slog.Logger {
	var level slog.Level
	if levelName == "" || level.UnmarshalText([]byte(levelName)) != nil {
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(output, options)
	} else {
		handler = slog.NewJSONHandler(output, options)
	}
	return slog.New(handler)
}
