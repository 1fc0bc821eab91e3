package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/id"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
)

const defaultMaxRejectRatio = 0.05

type RunTrackerConfig struct {
	StartDate      time.Time
	MaxRejectRatio float64
}

// RunCounts are the counters written to pipeline_runs when a run finishes.
type RunCounts struct {
	Extracted int
	Loaded    int
	Rejected  int
}

// RunTracker owns the pipeline_runs state machine.
type RunTracker struct {
	repo   pipelinerun.Repository
	ids    id.Generator
	cfg    RunTrackerConfig
	now    func() time.Time
	logger *logging.Logger
}

func NewRunTracker(repo pipelinerun.Repository, ids id.Generator, cfg RunTrackerConfig, logger *logging.Logger) *RunTracker {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if cfg.MaxRejectRatio < 0 {
		cfg.MaxRejectRatio = defaultMaxRejectRatio
	}
	return &RunTracker{repo: repo, ids: ids, cfg: cfg, now: time.Now, logger: logger}
}

// ResolveWindow returns explicit when given, otherwise the dates between the
// last successful run and today.
func (t *RunTracker) ResolveWindow(ctx context.Context, explicit *pipelinerun.Window) (pipelinerun.Window, error) {
	if explicit != nil {
		return pipelinerun.ResolveWindow(t.now(), explicit, nil, t.cfg.StartDate), nil
	}
	last, ok, err := t.repo.LastSuccessful(ctx)
	if err != nil {
		return pipelinerun.Window{}, fmt.Errorf("load last successful run: %w", err)
	}
	var lastRun *pipelinerun.Run
	if ok {
		lastRun = &last
	}
	return pipelinerun.ResolveWindow(t.now(), nil, lastRun, t.cfg.StartDate), nil
}

func (t *RunTracker) Start(ctx context.Context, window pipelinerun.Window) (pipelinerun.Run, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RunTracker.Start")
	defer span.End()

	run, err := t.repo.Start(ctx, pipelinerun.Run{
		InvocationID: t.ids.NewID(),
		RunDate:      window.End,
		WindowStart:  window.Start,
		StartedAt:    t.now().UTC(),
		Status:       pipelinerun.StatusRunning,
	})
	if err != nil {
		return pipelinerun.Run{}, fmt.Errorf("start pipeline run: %w", err)
	}
	t.logger.InfoContext(ctx, "pipeline run started",
		"run_id", run.ID,
		"invocation_id", run.InvocationID,
		"window_start", window.Start.Format(apiDateLayout),
		"run_date", window.End.Format(apiDateLayout),
	)
	return run, nil
}

// Finish applies the terminal transition. The run is failed when runErr is
// set or the rejected share exceeds the configured ratio; the returned error
// is the reason the run failed, or nil on success.
func (t *RunTracker) Finish(ctx context.Context, run pipelinerun.Run, counts RunCounts, runErr error) (pipelinerun.Status, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RunTracker.Finish")
	defer span.End()

	if runErr == nil {
		runErr = t.checkRejectRatio(counts)
	}
	outcome := pipelinerun.Outcome{
		Status:        pipelinerun.StatusSuccess,
		CompletedAt:   t.now().UTC(),
		RowsExtracted: counts.Extracted,
		RowsLoaded:    counts.Loaded,
		RowsRejected:  counts.Rejected,
	}
	if runErr != nil {
		outcome.Status = pipelinerun.StatusFailed
		outcome.ErrorMessage = runErr.Error()
	}

	// The terminal write must land even when the run was cancelled.
	writeCtx := context.WithoutCancel(ctx)
	if err := t.repo.Finish(writeCtx, run.ID, outcome); err != nil {
		if errors.Is(err, pipelinerun.ErrAlreadyFinished) {
			return outcome.Status, err
		}
		return outcome.Status, errors.Join(runErr, fmt.Errorf("finish pipeline run %d: %w", run.ID, err))
	}

	if runErr != nil {
		t.logger.ErrorContext(ctx, "pipeline run failed",
			"run_id", run.ID,
			"rows_extracted", counts.Extracted,
			"rows_loaded", counts.Loaded,
			"rows_rejected", counts.Rejected,
			"error", runErr,
		)
		return outcome.Status, runErr
	}
	t.logger.InfoContext(ctx, "pipeline run succeeded",
		"run_id", run.ID,
		"rows_extracted", counts.Extracted,
		"rows_loaded", counts.Loaded,
		"rows_rejected", counts.Rejected,
	)
	return outcome.Status, nil
}

func (t *RunTracker) LastSuccessful(ctx context.Context) (pipelinerun.Run, bool, error) {
	return t.repo.LastSuccessful(ctx)
}

func (t *RunTracker) List(ctx context.Context, limit int) ([]pipelinerun.Run, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be greater than zero", ErrInvalidInput)
	}
	return t.repo.List(ctx, limit)
}

func (t *RunTracker) checkRejectRatio(counts RunCounts) error {
	total := counts.Loaded + counts.Rejected
	if counts.Rejected == 0 || total == 0 {
		return nil
	}
	ratio := float64(counts.Rejected) / float64(total)
	if ratio > t.cfg.MaxRejectRatio {
		return fmt.Errorf("%w: %d of %d rows (%.4f > %.4f)", ErrRejectRatioExceeded, counts.Rejected, total, ratio, t.cfg.MaxRejectRatio)
	}
	return nil
}
