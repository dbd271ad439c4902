package storage

import (
	"github.com/franoropeza/reportrunner/pkg/models"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the run-history storage operations.
type Store interface {
	// Transaction control
	Begin() (Store, error)
	Commit() error
	Rollback() error
	Close() error

	// Run operations
	SaveRun(r models.Run) (int64, error)
	GetRun(id int64) (models.Run, error)
	FinishRun(id int64, status models.RunStatus, exitCode int) error
	ListRuns() ([]models.Run, error)
}
