// Package dlog builds a leveled, formatter-switchable logger for the rest
// of the module from the two config keys the core already names
// (log_level, log_formatter), following the reference corpus's pattern of
// a single logging-setup file building a charmbracelet/log.Logger.
package dlog

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New builds a logger honoring level and formatter strings as they would
// arrive from Config.LogLevel / Config.LogFormatter. Unrecognised or empty
// values fall back to Info level and the text formatter, the same
// permissive-on-input stance the decoder uses for unknown opcodes.
func New(w io.Writer, level, formatter string) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    false,
	})
	logger.SetLevel(parseLevel(level))
	logger.SetFormatter(parseFormatter(formatter))
	return logger
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

func parseFormatter(formatter string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(formatter)) {
	case "json":
		return log.JSONFormatter
	default:
		return log.TextFormatter
	}
}
