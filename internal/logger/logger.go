package logger

import (
	"io"
	"os"
	"path/filepath"
)

// Log levels accepted by New.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// LogFileName is the diagnostic log written while the TUI owns the terminal.
const LogFileName = "guardflash.log"

// New returns a logger writing console-encoded entries to w.
func New(level string, w io.Writer) *Logger {
	return newZapLogger(level, w)
}

// Stderr returns a logger for headless runs.
func Stderr(level string) *Logger {
	return New(level, os.Stderr)
}

// File opens (appending) the diagnostic log in dir. The returned close func
// flushes and closes the file.
func File(level, dir string) (*Logger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	l := New(level, f)
	return l, func() error {
		_ = l.Sync()
		return f.Close()
	}, nil
}
