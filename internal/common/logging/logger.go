// Package logging provides a structured logging implementation for the application
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents different levels of logging
type LogLevel int

const (
	// LevelDebug is for detailed debugging information
	LevelDebug LogLevel = iota
	// LevelInfo is for general operational information
	LevelInfo
	// LevelWarn is for warning events that might need attention
	LevelWarn
	// LevelError is for error events that might still allow the application to continue running
	LevelError
	// LevelFatal is for severe error events that will lead the application to abort
	LevelFatal
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelFatal: "FATAL",
}

// String returns the upper-case name of the level
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Logger provides structured logging capabilities.
// Derived loggers share the parent's sink and lock.
type Logger struct {
	name     string
	sink     *log.Logger
	minLevel LogLevel
	mu       *sync.Mutex
}

// New creates a new logger writing to stderr with the given name and minimum log level.
// Stdout is left to command output.
func New(name string, minLevel LogLevel) *Logger {
	return NewWithWriter(name, minLevel, os.Stderr)
}

// NewWithWriter creates a new logger writing to w
func NewWithWriter(name string, minLevel LogLevel, w io.Writer) *Logger {
	return &Logger{
		name:     name,
		sink:     log.New(w, "", log.LstdFlags),
		minLevel: minLevel,
		mu:       &sync.Mutex{},
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return NewWithWriter("discard", LevelFatal+1, io.Discard)
}

// WithName creates a new logger with a different name but the same configuration
func (l *Logger) WithName(name string) *Logger {
	return &Logger{
		name:     name,
		sink:     l.sink,
		minLevel: l.minLevel,
		mu:       l.mu,
	}
}

// SetMinLevel sets the minimum log level
func (l *Logger) SetMinLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// Debug logs a message at debug level using printf-style formatting
func (l *Logger) Debug(format string, v ...interface{}) {
	l.log(LevelDebug, format, v...)
}

// DebugKV logs a message at debug level with key-value pairs
func (l *Logger) DebugKV(msg string, keyValues ...interface{}) {
	l.logKV(LevelDebug, msg, keyValues...)
}

// Info logs a message at info level using printf-style formatting
func (l *Logger) Info(format string, v ...interface{}) {
	l.log(LevelInfo, format, v...)
}

// InfoKV logs a message at info level with key-value pairs
func (l *Logger) InfoKV(msg string, keyValues ...interface{}) {
	l.logKV(LevelInfo, msg, keyValues...)
}

// Warn logs a message at warning level using printf-style formatting
func (l *Logger) Warn(format string, v ...interface{}) {
	l.log(LevelWarn, format, v...)
}

// WarnKV logs a message at warning level with key-value pairs
func (l *Logger) WarnKV(msg string, keyValues ...interface{}) {
	l.logKV(LevelWarn, msg, keyValues...)
}

// Error logs a message at error level using printf-style formatting
func (l *Logger) Error(format string, v ...interface{}) {
	l.log(LevelError, format, v...)
}

// ErrorKV logs a message at error level with key-value pairs
func (l *Logger) ErrorKV(msg string, keyValues ...interface{}) {
	l.logKV(LevelError, msg, keyValues...)
}

func (l *Logger) enabled(level LogLevel) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.minLevel
}

// log formats and writes a log message at the specified level using printf-style formatting
func (l *Logger) log(level LogLevel, format string, v ...interface{}) {
	if !l.enabled(level) {
		return
	}

	msg := fmt.Sprintf(format, v...)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink.Printf("[%s] %s: %s", level, l.name, msg)
}

// logKV writes a log message with key-value pairs at the specified level
func (l *Logger) logKV(level LogLevel, msg string, keyValues ...interface{}) {
	if !l.enabled(level) {
		return
	}

	// Ensure we have an even number of key-value pairs
	if len(keyValues)%2 != 0 {
		keyValues = append(keyValues, "<missing value>")
	}

	kvPairs := make([]string, 0, len(keyValues)/2)
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keyValues[i])
		}
		kvPairs = append(kvPairs, fmt.Sprintf("%s=%v", key, keyValues[i+1]))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sink.Printf("[%s] %s: %s %s", level, l.name, msg, strings.Join(kvPairs, " "))
}

// ParseLevel converts a string level to a LogLevel
func ParseLevel(level string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}
