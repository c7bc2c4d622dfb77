package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Options are fixed at construction and never change afterwards.
type Options struct {
	// Verbose prints debug lines on stdout.
	Verbose bool
	// Quiet suppresses informational output. Warnings and errors still show.
	Quiet bool
	// Debug implies Verbose and marks the run as diagnostic.
	Debug bool
}

// Logger handles leveled logging with optional file output
type Logger struct {
	opts    Options
	writer  io.Writer
	errOut  io.Writer
	mu      sync.Mutex
	fileLog *os.File
	hasBar  bool
}

// New creates a new Logger instance
func New(opts Options) *Logger {
	return &Logger{
		opts:   opts,
		writer: os.Stdout,
		errOut: os.Stderr,
	}
}

// NewWithWriter creates a Logger printing to w instead of stdout and stderr.
func NewWithWriter(opts Options, w io.Writer) *Logger {
	return &Logger{
		opts:   opts,
		writer: w,
		errOut: w,
	}
}

// Options returns the options the logger was built with.
func (l *Logger) Options() Options {
	return l.opts
}

// Verbose reports whether debug lines reach the console.
func (l *Logger) Verbose() bool {
	return l.opts.Verbose || l.opts.Debug
}

// SetFileLog enables logging to a file
func (l *Logger) SetFileLog(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.fileLog = f
	return nil
}

// SetProgressBar indicates that a progress bar is active
func (l *Logger) SetProgressBar(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hasBar = active
}

// Close closes the log file if open
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileLog != nil {
		err := l.fileLog.Close()
		l.fileLog = nil
		return err
	}
	return nil
}

// Info logs informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.log("INFO", !l.opts.Quiet, format, args...)
}

// Debug logs detailed messages only in verbose mode
func (l *Logger) Debug(format string, args ...interface{}) {
	// Always log debug to file even in non-verbose mode
	l.log("DEBUG", l.Verbose(), format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log("WARN", true, format, args...)
}

// Error logs error messages to stderr
func (l *Logger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf("[ERROR] "+format+"\n", args...)
	fmt.Fprint(l.errOut, msg)

	if l.fileLog != nil {
		l.fileLog.WriteString(msg)
	}
}

// log handles the actual logging
func (l *Logger) log(level string, console bool, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var msg string
	if level == "INFO" {
		msg = fmt.Sprintf(format+"\n", args...)
	} else {
		msg = fmt.Sprintf("["+level+"] "+format+"\n", args...)
	}

	// Write to stdout (unless we have a progress bar and not verbose)
	if console && (l.Verbose() || !l.hasBar) {
		fmt.Fprint(l.writer, msg)
	}

	// Always write to file if available
	if l.fileLog != nil {
		l.fileLog.WriteString(msg)
	}
}
