package pipelinerun

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

var (
	ErrAlreadyFinished = errors.New("pipeline run already finished")
	ErrRunNotFound     = errors.New("pipeline run not found")
)

// Run is one row of pipeline_runs. RunDate is the end of the processed window.
type Run struct {
	ID            int64
	InvocationID  string
	RunDate       time.Time
	WindowStart   time.Time
	StartedAt     time.Time
	CompletedAt   *time.Time
	Status        Status
	RowsExtracted int
	RowsLoaded    int
	RowsRejected  int
	ErrorMessage  string
}

// Outcome is the terminal transition applied by Finish.
type Outcome struct {
	Status        Status
	CompletedAt   time.Time
	RowsExtracted int
	RowsLoaded    int
	RowsRejected  int
	ErrorMessage  string
}

// Repository persists the run state machine. Finish must fail with
// ErrAlreadyFinished unless the run is still running.
type Repository interface {
	Start(ctx context.Context, run Run) (Run, error)
	Finish(ctx context.Context, runID int64, outcome Outcome) error
	LastSuccessful(ctx context.Context) (Run, bool, error)
	List(ctx context.Context, limit int) ([]Run, error)
}
