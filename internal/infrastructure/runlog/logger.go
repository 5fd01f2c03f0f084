// Package runlog appends timestamped lines to ~/.plugup/logs/plugup.log so
// users can inspect a run after the terminal scrollback is gone.
package runlog

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger writes one line per lifecycle event and per attempt outcome.
type Logger struct {
	file  *os.File
	debug *log.Logger
}

// New creates (or reuses) the log file under the plugup home directory.
// When debug is non-nil, every line is echoed to it as well.
func New(homeDir string, debug *log.Logger) (*Logger, error) {
	logDir := filepath.Join(homeDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("runlog: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "plugup.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("runlog: open log file: %w", err)
	}
	return &Logger{file: f, debug: debug}, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	timestamp := time.Now().Format(time.RFC3339)
	fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
	if l.debug != nil {
		l.debug.Println(line)
	}
}
