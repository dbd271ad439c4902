package runlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franoropeza/reportrunner/internal/runlog"
	"github.com/stretchr/testify/assert"
)

func TestDateKey(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"ZeroPaddedMonthAndDay", time.Date(2024, 3, 7, 10, 0, 0, 0, time.Local), "20240307"},
		{"DoubleDigit", time.Date(2025, 12, 31, 23, 59, 0, 0, time.Local), "20251231"},
		{"FirstOfYear", time.Date(2025, 1, 9, 0, 0, 0, 0, time.Local), "20250109"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runlog.DateKey(tt.date))
		})
	}
}

func TestFilePath(t *testing.T) {
	d := time.Date(2024, 3, 7, 15, 30, 0, 0, time.Local)
	got := runlog.FilePath("/var/reports/logs", d)
	assert.Equal(t, filepath.Join("/var/reports/logs", "reporte_20240307.log"), got)
}

func TestEnsureDirIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	assert.NoError(t, runlog.EnsureDir(dir))
	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call is a no-op, not an error
	assert.NoError(t, runlog.EnsureDir(dir))
}

func TestWriterAppendsToExistingContent(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 1, 9, 8, 0, 0, 0, time.Local)
	path := runlog.FilePath(dir, now)

	prior := "previous run output\n"
	assert.NoError(t, os.WriteFile(path, []byte(prior), 0o644))

	w, err := runlog.Open(dir, now)
	assert.NoError(t, err)
	assert.Equal(t, path, w.Path())
	assert.NoError(t, w.WriteHeader(now))
	_, err = w.Write([]byte("hello\n"))
	assert.NoError(t, err)
	assert.NoError(t, w.WriteFooter(now.Add(2*time.Second), 0))
	assert.NoError(t, w.Close())

	content, err := os.ReadFile(path)
	assert.NoError(t, err)
	// Prior bytes untouched, new block strictly appended
	assert.True(t, strings.HasPrefix(string(content), prior))
	rest := strings.TrimPrefix(string(content), prior)
	lines := strings.Split(strings.TrimRight(rest, "\n"), "\n")
	assert.Len(t, lines, 5)
	assert.Equal(t, strings.Repeat("=", 60), lines[0])
	assert.Equal(t, "Execution: 2025-01-09 08:00:00", lines[1])
	assert.Equal(t, strings.Repeat("=", 60), lines[2])
	assert.Equal(t, "hello", lines[3])
	assert.Equal(t, "End (2025-01-09 08:00:02) exit=0", lines[4])
}

func TestSameDayRunsShareOneFile(t *testing.T) {
	dir := t.TempDir()
	morning := time.Date(2025, 1, 9, 8, 0, 0, 0, time.Local)
	evening := time.Date(2025, 1, 9, 20, 0, 0, 0, time.Local)

	for _, ts := range []time.Time{morning, evening} {
		w, err := runlog.Open(dir, ts)
		assert.NoError(t, err)
		assert.NoError(t, w.WriteHeader(ts))
		assert.NoError(t, w.WriteFooter(ts, 0))
		assert.NoError(t, w.Close())
	}

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, "reporte_20250109.log", entries[0].Name())

	content, err := os.ReadFile(runlog.FilePath(dir, morning))
	assert.NoError(t, err)
	// Two run blocks in chronological order
	first := strings.Index(string(content), "Execution: 2025-01-09 08:00:00")
	second := strings.Index(string(content), "Execution: 2025-01-09 20:00:00")
	assert.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}
