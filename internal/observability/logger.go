// Package observability provides logging, metrics and formatted output for the cover letter service.
package observability

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultLogLevel is used when no level or an unknown level is configured.
const DefaultLogLevel = "info"

// NewLogger creates a structured logger writing to w at the given level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "cover-letter",
	})
}

// DiscardLogger returns a logger that drops everything. Handy for tests and
// for components constructed without a logger.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}

// LoggerOrDiscard returns logger, or a discarding logger when it is nil.
func LoggerOrDiscard(logger *log.Logger) *log.Logger {
	if logger == nil {
		return DiscardLogger()
	}
	return logger
}
