package postgres

import (
	"database/sql"
	"time"
)

type pipelineRunInsertModel struct {
	InvocationID string    `db:"invocation_id"`
	RunDate      time.Time `db:"run_date"`
	WindowStart  time.Time `db:"window_start"`
	StartedAt    time.Time `db:"started_at"`
	Status       string    `db:"status"`
}

type pipelineRunTableModel struct {
	ID            int64          `db:"run_id"`
	InvocationID  string         `db:"invocation_id"`
	RunDate       time.Time      `db:"run_date"`
	WindowStart   time.Time      `db:"window_start"`
	StartedAt     time.Time      `db:"started_at"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	Status        string         `db:"status"`
	RowsExtracted int            `db:"rows_extracted"`
	RowsLoaded    int            `db:"rows_loaded"`
	RowsRejected  int            `db:"rows_rejected"`
	ErrorMessage  sql.NullString `db:"error_message"`
}
