package service_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/franoropeza/reportrunner/internal/runner"
	"github.com/franoropeza/reportrunner/internal/service"
	"github.com/franoropeza/reportrunner/pkg/models"
	"github.com/franoropeza/reportrunner/pkg/storage"
	"github.com/stretchr/testify/assert"
)

type testLogger struct{}

func (l testLogger) Infof(format string, args ...interface{})  {}
func (l testLogger) Errorf(format string, args ...interface{}) {}

func setupProject(t *testing.T, scripts map[string]string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh scripts")
	}
	dir := t.TempDir()
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestExecuteReport(t *testing.T) {

	t.Run("EndToEnd", func(t *testing.T) {
		projectDir := setupProject(t, map[string]string{"report.sh": "echo hello\n"})
		logDir := filepath.Join(projectDir, "logs")
		store := storage.NewMockStore()
		svc := service.NewRunService(store, runner.New("/bin/sh", projectDir), logDir, testLogger{})

		run, err := svc.ExecuteReport(context.Background(), models.Report{Name: "demo", Script: "report.sh"})
		assert.NoError(t, err)
		assert.Equal(t, models.CompletedRunStatus, run.Status)
		assert.NotNil(t, run.ExitCode)
		assert.Equal(t, 0, *run.ExitCode)
		assert.NotNil(t, run.FinishedAt)

		content, err := os.ReadFile(run.LogPath)
		assert.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
		assert.Len(t, lines, 5)
		assert.Equal(t, strings.Repeat("=", 60), lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "Execution: "))
		assert.Equal(t, strings.Repeat("=", 60), lines[2])
		assert.Equal(t, "hello", lines[3])
		assert.True(t, strings.HasPrefix(lines[4], "End ("))
		assert.True(t, strings.HasSuffix(lines[4], "exit=0"))

		// The run was recorded in the store
		saved, err := store.GetRun(run.ID)
		assert.NoError(t, err)
		assert.Equal(t, "demo", saved.ReportName)
		assert.Equal(t, models.CompletedRunStatus, saved.Status)
	})

	t.Run("SameDayRunsAppendToOneFile", func(t *testing.T) {
		projectDir := setupProject(t, map[string]string{"report.sh": "echo hola\n"})
		logDir := filepath.Join(projectDir, "logs")
		svc := service.NewRunService(nil, runner.New("/bin/sh", projectDir), logDir, testLogger{})

		first, err := svc.ExecuteReport(context.Background(), models.Report{Name: "demo", Script: "report.sh"})
		assert.NoError(t, err)
		second, err := svc.ExecuteReport(context.Background(), models.Report{Name: "demo", Script: "report.sh"})
		assert.NoError(t, err)
		assert.Equal(t, first.LogPath, second.LogPath)

		content, err := os.ReadFile(first.LogPath)
		assert.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(content), "Execution: "))
		assert.Equal(t, 2, strings.Count(string(content), "End ("))
	})

	t.Run("MissingScriptStillGetsFooter", func(t *testing.T) {
		projectDir := setupProject(t, nil)
		logDir := filepath.Join(projectDir, "logs")
		store := storage.NewMockStore()
		svc := service.NewRunService(store, runner.New("/bin/sh", projectDir), logDir, testLogger{})

		// The interpreter exists; the script does not. Its complaint is
		// ordinary captured output and the run block still closes.
		run, err := svc.ExecuteReport(context.Background(), models.Report{Name: "fantasma", Script: "no_such.sh"})
		assert.NoError(t, err)
		assert.Equal(t, models.FailedRunStatus, run.Status)
		assert.NotNil(t, run.ExitCode)
		assert.NotEqual(t, 0, *run.ExitCode)

		content, err := os.ReadFile(run.LogPath)
		assert.NoError(t, err)
		assert.Contains(t, string(content), "no_such.sh")
		assert.Contains(t, string(content), "End (")

		saved, err := store.GetRun(run.ID)
		assert.NoError(t, err)
		assert.Equal(t, models.FailedRunStatus, saved.Status)
	})

	t.Run("MissingInterpreterIsAnError", func(t *testing.T) {
		projectDir := setupProject(t, map[string]string{"report.sh": "echo hello\n"})
		logDir := filepath.Join(projectDir, "logs")
		svc := service.NewRunService(nil, runner.New("/no/such/python", projectDir), logDir, testLogger{})

		run, err := svc.ExecuteReport(context.Background(), models.Report{Name: "demo", Script: "report.sh"})
		assert.Error(t, err)
		assert.Equal(t, models.FailedRunStatus, run.Status)

		// Even a launch failure closes the block
		content, readErr := os.ReadFile(run.LogPath)
		assert.NoError(t, readErr)
		assert.Contains(t, string(content), "End (")
	})

	t.Run("WithoutStore", func(t *testing.T) {
		projectDir := setupProject(t, map[string]string{"report.sh": "echo hello\n"})
		logDir := filepath.Join(projectDir, "logs")
		svc := service.NewRunService(nil, runner.New("/bin/sh", projectDir), logDir, testLogger{})

		run, err := svc.ExecuteReport(context.Background(), models.Report{Name: "demo", Script: "report.sh"})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), run.ID)
		assert.Equal(t, models.CompletedRunStatus, run.Status)
	})
}

func TestExecuteAll(t *testing.T) {
	projectDir := setupProject(t, map[string]string{
		"ok.sh":   "echo ok\n",
		"fail.sh": "echo boom 1>&2\nexit 3\n",
	})
	logDir := filepath.Join(projectDir, "logs")
	store := storage.NewMockStore()
	svc := service.NewRunService(store, runner.New("/bin/sh", projectDir), logDir, testLogger{})

	reports := []models.Report{
		{Name: "ok", Script: "ok.sh"},
		{Name: "fail", Script: "fail.sh"},
		{Name: "ok-again", Script: "ok.sh"},
	}
	code, err := svc.ExecuteAll(context.Background(), reports)
	assert.NoError(t, err)
	// A failed report does not stop the remaining ones, but its exit code
	// becomes the wrapper's
	assert.Equal(t, 3, code)

	runs, err := store.ListRuns()
	assert.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestHistoryService(t *testing.T) {
	store := storage.NewMockStore()
	svc := service.NewHistoryService(store)

	runs, err := svc.ListRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	id, err := store.SaveRun(models.Run{ReportName: "movimientos", Status: models.RunningRunStatus})
	assert.NoError(t, err)

	run, err := svc.GetRun(id)
	assert.NoError(t, err)
	assert.Equal(t, "movimientos", run.ReportName)

	_, err = svc.GetRun(999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
