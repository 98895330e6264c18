// Package logging provides component-scoped structured logging for the
// movewise analysis engine.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Close()
//
//	logger := logging.Get("scanner")
//	logger.Info("scan started", "path", "/home/user")
//
// Before Init is called every logger writes to io.Discard, so embedding the
// engine as a library never produces unsolicited output.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an unknown log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// Config configures the logging system.
type Config struct {
	// Level is the minimum level emitted: debug, info, warn or error.
	Level string

	// Path is the log file path. Empty uses DefaultLogPath().
	// "-" writes to stderr instead of a file.
	Path string

	// ReportCaller includes the file:line of the call site.
	ReportCaller bool
}

// Logger wraps charmbracelet/log with a component prefix.
type Logger struct {
	l *log.Logger
}

// Debug logs a debug message with key/value pairs.
func (l *Logger) Debug(msg string, args ...any) { l.l.Debug(msg, args...) }

// Info logs an info message with key/value pairs.
func (l *Logger) Info(msg string, args ...any) { l.l.Info(msg, args...) }

// Warn logs a warning message with key/value pairs.
func (l *Logger) Warn(msg string, args ...any) { l.l.Warn(msg, args...) }

// Error logs an error message with key/value pairs.
func (l *Logger) Error(msg string, args ...any) { l.l.Error(msg, args...) }

// With returns a new logger with additional persistent context.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l: l.l.With(args...)}
}

type state struct {
	mu          sync.RWMutex
	initialized bool
	level       log.Level
	out         io.Writer
	file        *os.File
	caller      bool
	loggers     map[string]*Logger
}

var globalState = &state{loggers: make(map[string]*Logger)}

// parseLevel maps a level string to a charmbracelet/log level.
func parseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return log.InfoLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Init initializes the logging system. Calling Init again reconfigures all
// previously obtained loggers' destinations on next Get; existing Logger
// values keep writing to the old destination.
func Init(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var out io.Writer
	var file *os.File
	switch cfg.Path {
	case "-":
		out = os.Stderr
	default:
		path := cfg.Path
		if path == "" {
			path = DefaultLogPath()
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		out = f
		file = f
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		_ = globalState.file.Close()
	}
	globalState.initialized = true
	globalState.level = level
	globalState.out = out
	globalState.file = file
	globalState.caller = cfg.ReportCaller
	globalState.loggers = make(map[string]*Logger)
	return nil
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	globalState.initialized = false
	globalState.loggers = make(map[string]*Logger)
	if globalState.file != nil {
		err := globalState.file.Close()
		globalState.file = nil
		return err
	}
	return nil
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if l, ok := globalState.loggers[component]; ok {
		return l
	}

	out := io.Writer(io.Discard)
	level := log.InfoLevel
	caller := false
	if globalState.initialized {
		out = globalState.out
		level = globalState.level
		caller = globalState.caller
	}

	l := log.NewWithOptions(out, log.Options{
		Level:           level,
		Prefix:          component,
		ReportTimestamp: true,
		ReportCaller:    caller,
	})
	logger := &Logger{l: l}
	globalState.loggers[component] = logger
	return logger
}

// DefaultLogPath returns the default log file location under the XDG state
// directory.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "movewise", "movewise.log")
}
