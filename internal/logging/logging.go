// Package logging configures the process-wide phuslu/log logger.
package logging

import (
	"io"
	"os"

	"github.com/phuslu/log"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
)

// Setup installs log.DefaultLogger from cfg. Output goes to stderr.
func Setup(cfg config.LogConfig) {
	log.DefaultLogger = New(cfg, os.Stderr)
}

// New builds a logger writing to w. Format "json" writes one JSON object per
// line; anything else writes human readable console output.
func New(cfg config.LogConfig, w io.Writer) log.Logger {
	logger := log.Logger{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	if cfg.Format == "json" {
		logger.Writer = &log.IOWriter{Writer: w}
	} else {
		logger.Writer = &log.ConsoleWriter{Writer: w, ColorOutput: false, QuoteString: true}
	}
	return logger
}

// ParseLevel maps debug, info, warn and error to a level. Unknown values give info.
func ParseLevel(level string) log.Level {
	switch level {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
