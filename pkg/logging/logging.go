package logging

import (
	"github.com/go-logr/logr"
)

const (
	LEVEL_INFO  = 0
	LEVEL_DEBUG = 1
	LEVEL_TRACE = 2
)

// WarningKey marks a log line as a warning. SimpleLogSink renders lines carrying it with a [WARN] label.
const WarningKey = "warning"

// NewLogger creates a new Logger wrapping the given logr.Logger. A zero value logr.Logger is replaced with a
// discarding logger.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a Logger that drops everything.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// Logger is a struct that wraps the logr.Logger interface.
type Logger struct {
	log logr.Logger
}

// Logr returns the underlying logr.Logger.
func (l *Logger) Logr() logr.Logger {
	return l.log
}

// WithName returns a Logger whose lines are prefixed with name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{log: l.log.WithName(name)}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_TRACE).Info(msg, keysAndValues...)
}

// Warn logs a non-fatal condition at info verbosity.
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	kv := append([]interface{}{WarningKey, true}, keysAndValues...)
	l.log.Info(msg, kv...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
