package service

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/franoropeza/reportrunner/internal/runlog"
	"github.com/franoropeza/reportrunner/pkg/models"
	"github.com/franoropeza/reportrunner/pkg/storage"
)

// Logger defines the logging interface for RunService
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Launcher executes one report script, streaming its combined stdout/stderr
// into out, and returns the child's exit code. Implemented by runner.Runner.
type Launcher interface {
	Run(ctx context.Context, script string, out io.Writer) (int, error)
}

// RunService orchestrates one execution of a report script: ensure the log
// directory, append the run header to the day's log file, launch the child
// with its output redirected into the file, append the footer, and record
// the run in the history store when one is configured.
type RunService struct {
	store    storage.Store // nil when no database is configured
	launcher Launcher
	logDir   string
	logger   Logger
}

func NewRunService(store storage.Store, launcher Launcher, logDir string, logger Logger) *RunService {
	return &RunService{
		store:    store,
		launcher: launcher,
		logDir:   logDir,
		logger:   logger,
	}
}

// ExecuteReport runs a single report synchronously and returns the finished
// run record. A non-zero child exit code is reported through the record, not
// as an error; errors mean the run itself could not be carried out (log file
// not writable, interpreter missing).
func (s *RunService) ExecuteReport(ctx context.Context, rep models.Report) (models.Run, error) {
	started := time.Now()

	w, err := runlog.Open(s.logDir, started)
	if err != nil {
		return models.Run{}, err
	}
	defer w.Close()

	if err := w.WriteHeader(started); err != nil {
		return models.Run{}, err
	}

	run := models.Run{
		ReportName: rep.Name,
		Script:     rep.Script,
		LogPath:    w.Path(),
		Status:     models.RunningRunStatus,
		StartedAt:  started,
	}
	if s.store != nil {
		run.ID, err = s.saveRun(run)
		if err != nil {
			return models.Run{}, err
		}
	}

	code, runErr := s.launcher.Run(ctx, rep.Script, w)

	// The footer is appended even when the child failed: the log block must
	// always close, and the exit code is part of it.
	finished := time.Now()
	if err := w.WriteFooter(finished, code); err != nil {
		return models.Run{}, err
	}

	status := models.CompletedRunStatus
	if runErr != nil || code != 0 {
		status = models.FailedRunStatus
	}
	run.Status = status
	run.ExitCode = &code
	run.FinishedAt = &finished

	if s.store != nil {
		if err := s.finishRun(run.ID, status, code); err != nil {
			return models.Run{}, err
		}
	}

	if runErr != nil {
		s.logger.Errorf("Report '%s' could not be launched: %v", rep.Name, runErr)
		return run, errors.Wrapf(runErr, "report %s", rep.Name)
	}
	s.logger.Infof("Report '%s' finished with exit code %d (log: %s)", rep.Name, code, run.LogPath)
	return run, nil
}

// ExecuteAll runs the given reports sequentially, in order, each blocking
// until its child exits. It returns the first non-zero exit code seen, so
// the wrapper's own exit status reflects a failed report.
func (s *RunService) ExecuteAll(ctx context.Context, reports []models.Report) (int, error) {
	exitCode := 0
	for _, rep := range reports {
		run, err := s.ExecuteReport(ctx, rep)
		if err != nil {
			return -1, err
		}
		if exitCode == 0 && run.ExitCode != nil && *run.ExitCode != 0 {
			exitCode = *run.ExitCode
		}
	}
	return exitCode, nil
}

func (s *RunService) saveRun(run models.Run) (id int64, err error) {
	txStore, err := s.store.Begin()
	if err != nil {
		s.logger.Errorf("Failed to begin transaction for SaveRun: %v", err)
		return 0, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback: %v", rollbackErr)
			}
		} else {
			if commitErr := txStore.Commit(); commitErr != nil {
				s.logger.Errorf("Failed to commit: %v", commitErr)
				err = commitErr
			}
		}
	}()

	id, err = txStore.SaveRun(run)
	if err != nil {
		s.logger.Errorf("Failed to save run for report %s: %v", run.ReportName, err)
		return 0, errors.Wrapf(err, "save run for report %s", run.ReportName)
	}
	return id, nil
}

func (s *RunService) finishRun(id int64, status models.RunStatus, exitCode int) (err error) {
	txStore, err := s.store.Begin()
	if err != nil {
		s.logger.Errorf("Failed to begin transaction for FinishRun: %v", err)
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if err != nil {
			if rollbackErr := txStore.Rollback(); rollbackErr != nil {
				s.logger.Errorf("Failed to rollback: %v", rollbackErr)
			}
		} else {
			if commitErr := txStore.Commit(); commitErr != nil {
				s.logger.Errorf("Failed to commit: %v", commitErr)
				err = commitErr
			}
		}
	}()

	if err = txStore.FinishRun(id, status, exitCode); err != nil {
		s.logger.Errorf("Failed to finish run %d with status %s: %v", id, status, err)
		return errors.Wrapf(err, "finish run %d", id)
	}
	return nil
}
