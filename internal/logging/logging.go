// Package logging configures the diagnostic logger used for kubectl tracing.
// User-facing output goes through package ui; this logger writes to stderr.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// Logger is the process-wide diagnostic logger.
var Logger = New(DefaultLevel, false)

// Configure replaces Logger with one at the given level.
func Configure(level string, json bool) {
	Logger = New(level, json)
	Logger.Debugf("Initialised logger at level '%s' (json=%t)", level, json)
}

// New builds a logger writing to stderr.
func New(level string, json bool) *logrus.Logger {
	l := logrus.New()

	if json {
		l.Formatter = &logrus.JSONFormatter{}
	} else {
		l.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	}
	l.Out = os.Stderr

	setLevel(l, level)
	return l
}

// setLevel maps a level name onto the logger. "none" discards all output;
// unknown names fall back to DefaultLevel.
func setLevel(l *logrus.Logger, level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "none" {
		l.Out = io.Discard
		return
	}
	if level == "warning" {
		level = "warn"
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed, _ = logrus.ParseLevel(DefaultLevel)
	}
	l.Level = parsed
}
