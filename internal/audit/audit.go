// Package audit keeps the human-readable activity log: one timestamped line
// per structural action, appended to a plain text file and echoed to stdout.
package audit

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/openmirror/mirrorbox/internal/utils"
)

// Logger is an append-only activity sink. Record never returns an error; the
// log is an observability aid and its failures must not abort a sync pass.
type Logger struct {
	mu     sync.Mutex
	file   *os.File
	stdout io.Writer
	now    func() time.Time
}

// NewLogger opens (or creates) the log file in append mode.
func NewLogger(path string) (*Logger, error) {
	if err := utils.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		file:   file,
		stdout: os.Stdout,
		now:    time.Now,
	}, nil
}

// Record appends `[timestamp] message` to the log file and stdout.
func (l *Logger) Record(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", l.now().Format(time.RFC3339), message)

	if _, err := io.WriteString(l.stdout, line); err != nil {
		slog.Warn("activity log stdout write failed", "error", err)
	}
	if _, err := io.WriteString(l.file, line); err != nil {
		slog.Warn("activity log file write failed", "error", err)
	}
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
