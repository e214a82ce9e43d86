// Package log provides the leveled logger used across session control,
// extraction, and the CLI/HTTP hosts.
package log

import (
	"log"
	"os"
)

// Level represents logging verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

// Logger provides leveled logging over the standard log package, with an
// optional component tag prefixed onto every message the way the teacher's
// own adapters bracket their log lines (e.g. "[DataReader] ...").
type Logger struct {
	level     Level
	component string
}

// New creates a logger at the given level.
func New(level Level) *Logger {
	return &Logger{level: level}
}

// WithComponent returns a derived logger at the same level whose messages
// are prefixed "[name] ", for callers that want their log lines tagged by
// subsystem (session controller, extractor, host) without re-deriving the
// level on every call site.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{level: l.level, component: name}
}

func (l *Logger) tag(format string) string {
	if l.component == "" {
		return format
	}
	return "[" + l.component + "] " + format
}

// NewDefaultLogger builds a logger from the LOG_LEVEL environment variable,
// defaulting to Info when unset or unrecognized.
func NewDefaultLogger() *Logger {
	level := LevelInfo
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		level = LevelError
	case "WARN":
		level = LevelWarn
	case "INFO":
		level = LevelInfo
	case "DEBUG":
		level = LevelDebug
	case "TRACE":
		level = LevelTrace
	}
	return &Logger{level: level}
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LevelError {
		log.Printf("[ERROR] "+l.tag(format), args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LevelWarn {
		log.Printf("[WARN] "+l.tag(format), args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LevelInfo {
		log.Printf("[INFO] "+l.tag(format), args...)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LevelDebug {
		log.Printf("[DEBUG] "+l.tag(format), args...)
	}
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.level >= LevelTrace {
		log.Printf("[TRACE] "+l.tag(format), args...)
	}
}

// Level returns the logger's current verbosity.
func (l *Logger) Level() Level {
	return l.level
}

// Default is a package-level logger constructed from the environment,
// convenient for components that don't hold their own reference.
var Default = NewDefaultLogger()
