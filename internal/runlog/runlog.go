// Package runlog maintains the per-day, append-only run log files that the
// report scripts write into. One file per calendar day; every run appends a
// block of header, captured child output and footer. Files are never rotated
// or truncated.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

const (
	filePrefix = "reporte_"
	timeFormat = "2006-01-02 15:04:05"
)

// separator is the fixed-width line framing the run header.
const separator = "============================================================"

// DateKey returns the YYYYMMDD key identifying which day's log file a run
// belongs to. Derived from calendar components directly, never from parsing
// a locale-formatted string.
func DateKey(t time.Time) string {
	return t.Format("20060102")
}

// FilePath returns the log file path for the given day under logDir.
func FilePath(logDir string, t time.Time) string {
	return filepath.Join(logDir, filePrefix+DateKey(t)+".log")
}

// EnsureDir creates the log directory if absent. Idempotent.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating log directory %s", dir)
	}
	return nil
}

// Writer appends one run block to the day's log file. It is handed to the
// child process as both stdout and stderr, so the streams interleave in the
// file in whatever order the OS delivers them.
type Writer struct {
	f    *os.File
	path string
}

// Open ensures the log directory exists and opens the day's file in append
// mode, creating it if absent. Multiple runs on the same day append to the
// same file.
func Open(logDir string, now time.Time) (*Writer, error) {
	if err := EnsureDir(logDir); err != nil {
		return nil, err
	}
	path := FilePath(logDir, now)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening run log %s", path)
	}
	return &Writer{f: f, path: path}, nil
}

// Path returns the file the writer appends to.
func (w *Writer) Path() string {
	return w.path
}

// WriteHeader appends the run header: separator, execution timestamp, separator.
func (w *Writer) WriteHeader(now time.Time) error {
	_, err := fmt.Fprintf(w.f, "%s\nExecution: %s\n%s\n", separator, now.Format(timeFormat), separator)
	if err != nil {
		return errors.Wrap(err, "writing run header")
	}
	return nil
}

// WriteFooter appends the completion line with the child's exit code.
func (w *Writer) WriteFooter(now time.Time, exitCode int) error {
	_, err := fmt.Fprintf(w.f, "End (%s) exit=%d\n", now.Format(timeFormat), exitCode)
	if err != nil {
		return errors.Wrap(err, "writing run footer")
	}
	return nil
}

// Write appends raw child output.
func (w *Writer) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *Writer) Close() error {
	return w.f.Close()
}
