package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	qb "github.com/riskibarqy/nhl-warehouse/internal/platform/querybuilder"
)

const (
	pipelineRunsTable = "pipeline_runs"
	runIDColumn       = "run_id"
)

var pipelineRunColumns = qb.Columns(pipelineRunTableModel{})

type PipelineRunRepository struct {
	db *sqlx.DB
}

func NewPipelineRunRepository(db *sqlx.DB) *PipelineRunRepository {
	return &PipelineRunRepository{db: db}
}

func (r *PipelineRunRepository) Start(ctx context.Context, run pipelinerun.Run) (pipelinerun.Run, error) {
	insert, err := qb.InsertModel(pipelineRunsTable, pipelineRunInsertModel{
		InvocationID: run.InvocationID,
		RunDate:      run.RunDate.UTC(),
		WindowStart:  run.WindowStart.UTC(),
		StartedAt:    run.StartedAt.UTC(),
		Status:       string(pipelinerun.StatusRunning),
	})
	if err != nil {
		return pipelinerun.Run{}, fmt.Errorf("build insert pipeline run query: %w", err)
	}
	query, args, err := insert.Returning(runIDColumn).ToSQL()
	if err != nil {
		return pipelinerun.Run{}, fmt.Errorf("build insert pipeline run query: %w", err)
	}

	if err := r.db.GetContext(ctx, &run.ID, query, args...); err != nil {
		return pipelinerun.Run{}, fmt.Errorf("insert pipeline run invocation_id=%s: %w", run.InvocationID, err)
	}
	run.Status = pipelinerun.StatusRunning
	return run, nil
}

// Finish applies the terminal transition only while the run is running.
func (r *PipelineRunRepository) Finish(ctx context.Context, runID int64, outcome pipelinerun.Outcome) error {
	query, args, err := qb.Update(pipelineRunsTable).
		Set("status", string(outcome.Status)).
		Set("completed_at", outcome.CompletedAt.UTC()).
		Set("rows_extracted", outcome.RowsExtracted).
		Set("rows_loaded", outcome.RowsLoaded).
		Set("rows_rejected", outcome.RowsRejected).
		Set("error_message", optionalString(outcome.ErrorMessage)).
		Where(qb.Eq(runIDColumn, runID), qb.Eq("status", string(pipelinerun.StatusRunning))).
		Returning(runIDColumn).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build finish pipeline run query: %w", err)
	}

	var updated int64
	err = r.db.GetContext(ctx, &updated, query, args...)
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("finish pipeline run run_id=%d: %w", runID, err)
	}

	query, args, err = qb.Select("status").From(pipelineRunsTable).Where(qb.Eq(runIDColumn, runID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build pipeline run status query: %w", err)
	}
	var status string
	if err := r.db.GetContext(ctx, &status, query, args...); err != nil {
		if isNotFound(err) {
			return pipelinerun.ErrRunNotFound
		}
		return fmt.Errorf("get pipeline run status run_id=%d: %w", runID, err)
	}
	return pipelinerun.ErrAlreadyFinished
}

func (r *PipelineRunRepository) LastSuccessful(ctx context.Context) (pipelinerun.Run, bool, error) {
	query, args, err := qb.Select(pipelineRunColumns...).From(pipelineRunsTable).
		Where(qb.Eq("status", string(pipelinerun.StatusSuccess))).
		OrderBy("run_date DESC", runIDColumn+" DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return pipelinerun.Run{}, false, fmt.Errorf("build last successful run query: %w", err)
	}

	var row pipelineRunTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return pipelinerun.Run{}, false, nil
		}
		return pipelinerun.Run{}, false, fmt.Errorf("get last successful run: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *PipelineRunRepository) List(ctx context.Context, limit int) ([]pipelinerun.Run, error) {
	query, args, err := qb.Select(pipelineRunColumns...).From(pipelineRunsTable).
		OrderBy(runIDColumn + " DESC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pipeline runs query: %w", err)
	}

	var rows []pipelineRunTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pipeline runs: %w", err)
	}
	out := make([]pipelinerun.Run, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (m pipelineRunTableModel) toDomain() pipelinerun.Run {
	return pipelinerun.Run{
		ID:            m.ID,
		InvocationID:  m.InvocationID,
		RunDate:       m.RunDate.UTC(),
		WindowStart:   m.WindowStart.UTC(),
		StartedAt:     m.StartedAt.UTC(),
		CompletedAt:   nullTimePtr(m.CompletedAt),
		Status:        pipelinerun.Status(m.Status),
		RowsExtracted: m.RowsExtracted,
		RowsLoaded:    m.RowsLoaded,
		RowsRejected:  m.RowsRejected,
		ErrorMessage:  nullStringValue(m.ErrorMessage),
	}
}
