package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/franoropeza/reportrunner/pkg/models"
	"github.com/franoropeza/reportrunner/pkg/storage"
)

type DBInterface interface {
	Get(dest interface{}, query string, args ...interface{}) error
	Select(dest interface{}, query string, args ...interface{}) error
	QueryRowx(query string, args ...interface{}) *sqlx.Row
	Exec(query string, args ...interface{}) (sql.Result, error)
}

type PostgresStore struct {
	db DBInterface
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Begin() (storage.Store, error) {
	if db, ok := s.db.(*sqlx.DB); ok {
		tx, err := db.Beginx()
		if err != nil {
			return nil, err
		}
		return &PostgresStore{db: tx}, nil
	}
	return nil, fmt.Errorf("cannot begin transaction on unknown type")
}

func (s *PostgresStore) Commit() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Commit()
	}
	return fmt.Errorf("cannot commit: not a transaction")
}

func (s *PostgresStore) Rollback() error {
	if tx, ok := s.db.(*sqlx.Tx); ok {
		return tx.Rollback()
	}
	return fmt.Errorf("cannot rollback: not a transaction")
}

func (s *PostgresStore) Close() error {
	if db, ok := s.db.(*sqlx.DB); ok {
		return db.Close()
	}
	return nil // No-op for *sqlx.Tx
}

// SaveRun inserts a new run and returns its ID
func (s *PostgresStore) SaveRun(r models.Run) (int64, error) {
	var runID int64
	err := s.db.QueryRowx("INSERT INTO runs (report_name, script, log_path, status, exit_code, started_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id",
		r.ReportName, r.Script, r.LogPath, r.Status, r.ExitCode, r.StartedAt, r.FinishedAt).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("save run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves a run by ID
func (s *PostgresStore) GetRun(id int64) (models.Run, error) {
	var run models.Run
	err := s.db.Get(&run, "SELECT * FROM runs WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return models.Run{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Run{}, fmt.Errorf("get run %d: %w", id, err)
	}
	return run, nil
}

// FinishRun closes a run with its final status and exit code
func (s *PostgresStore) FinishRun(id int64, status models.RunStatus, exitCode int) error {
	res, err := s.db.Exec("UPDATE runs SET status = $1, exit_code = $2, finished_at = CURRENT_TIMESTAMP WHERE id = $3",
		status, exitCode, id)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListRuns retrieves all runs, newest first
func (s *PostgresStore) ListRuns() ([]models.Run, error) {
	runs := []models.Run{}
	query := "SELECT id, report_name, script, log_path, status, exit_code, started_at, finished_at FROM runs ORDER BY started_at DESC"
	err := s.db.Select(&runs, query)
	if err != nil {
		return nil, err
	}
	return runs, nil
}
