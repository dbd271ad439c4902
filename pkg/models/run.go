package models

import "time"

type RunStatus string

const (
	RunningRunStatus   RunStatus = "RUNNING"
	CompletedRunStatus RunStatus = "COMPLETED"
	FailedRunStatus    RunStatus = "FAILED"
)

// Run records one execution of a report script for auditing.
type Run struct {
	ID         int64      `json:"id" db:"id"`                             // Unique identifier (PostgreSQL auto-increment)
	ReportName string     `json:"report_name" db:"report_name"`           // Configured report that was executed
	Script     string     `json:"script" db:"script"`                     // Script path handed to the interpreter
	LogPath    string     `json:"log_path" db:"log_path"`                 // Per-day log file the output went to
	Status     RunStatus  `json:"status" db:"status"`                     // "RUNNING", "COMPLETED", "FAILED"
	ExitCode   *int       `json:"exit_code,omitempty" db:"exit_code"`     // Child exit code; nil while running
	StartedAt  time.Time  `json:"started_at" db:"started_at"`             // When the run header was written
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"` // Nullable end time
}
