// Package logger builds the logrus logger shared by the engine subsystems.
package logger

import (
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-core/engine/config"
	"github.com/sirupsen/logrus"
)

// New creates a logger from the log configuration. Unknown levels fall back to info.
//
// Parameters:
//   - cfg: level and formatter settings
//
// Returns:
//   - *logrus.Logger: the configured logger writing to stderr
func New(cfg config.LogConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Discard returns a logger that drops every entry.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// OrDefault returns l, or the logrus standard logger when l is nil.
func OrDefault(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}
