package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/gamestats"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

type RunInput struct {
	// Window overrides the incremental window when set.
	Window *pipelinerun.Window
	Stage  Stage
	// DryRun extracts and transforms without loading or tracking.
	DryRun bool
}

type RunReport struct {
	RunID    int64
	Status   pipelinerun.Status
	Window   pipelinerun.Window
	Counts   RunCounts
	Rolling  int
	Failures []FetchFailure
	// Staged lists the files written by stage-only invocations.
	Staged []string
}

// PipelineService drives extract, transform, load and rolling recompute one
// date at a time under a tracked run.
type PipelineService struct {
	extractor   *ExtractService
	transformer *Transformer
	loader      *LoadService
	rolling     *RollingService
	tracker     *RunTracker
	staging     Staging
	observer    PipelineObserver
	logger      *logging.Logger
}

func NewPipelineService(
	extractor *ExtractService,
	transformer *Transformer,
	loader *LoadService,
	rolling *RollingService,
	tracker *RunTracker,
	staging Staging,
	observer PipelineObserver,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		extractor:   extractor,
		transformer: transformer,
		loader:      loader,
		rolling:     rolling,
		tracker:     tracker,
		staging:     staging,
		observer:    observerOrNop(observer),
		logger:      logger,
	}
}

func (s *PipelineService) Run(ctx context.Context, input RunInput) (RunReport, error) {
	ctx, span := StartRunSpan(ctx, "usecase.PipelineService.Run", attribute.String("stage", string(input.Stage)))
	var err error
	defer func() { endSpan(span, err) }()

	if input.Stage == "" {
		input.Stage = StageAll
	}
	window, err := s.tracker.ResolveWindow(ctx, input.Window)
	if err != nil {
		return RunReport{}, err
	}
	report := RunReport{Window: window}
	if window.Empty() {
		s.logger.InfoContext(ctx, "nothing to process",
			"window_start", window.Start.Format(apiDateLayout),
			"run_date", window.End.Format(apiDateLayout),
		)
		return report, nil
	}

	switch {
	case input.DryRun:
		err = s.dryRun(ctx, &report)
		return report, err
	case input.Stage != StageAll:
		err = s.runStage(ctx, input.Stage, &report)
		return report, err
	}

	run, err := s.tracker.Start(ctx, window)
	if err != nil {
		return report, err
	}
	report.RunID = run.ID

	runErr := s.processWindow(ctx, &report)
	report.Status, err = s.tracker.Finish(ctx, run, report.Counts, runErr)
	s.observer.RunFinished(string(report.Status), time.Now())
	return report, err
}

// processWindow returns the first batch-level failure, or ErrIncompleteExtract
// when some entity could not be fetched.
func (s *PipelineService) processWindow(ctx context.Context, report *RunReport) error {
	for _, date := range report.Window.Dates() {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := s.extract(ctx, date)
		if err != nil {
			return err
		}
		report.Counts.Extracted += raw.RowsExtracted()
		report.Failures = append(report.Failures, raw.Failures...)

		batch := s.transform(ctx, raw)
		if err := s.loadAndRoll(ctx, batch, report); err != nil {
			return err
		}
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteExtract, summarizeFailures(report.Failures))
	}
	return nil
}

func (s *PipelineService) loadAndRoll(ctx context.Context, batch CanonicalBatch, report *RunReport) error {
	report.Counts.Rejected += len(batch.Rejections)

	started := time.Now()
	result, err := s.loader.Load(ctx, batch)
	s.observer.ObserveStage(string(StageLoad), time.Since(started))
	report.Counts.Loaded += result.RowsLoaded()
	report.Counts.Rejected += len(result.Rejections)
	if err != nil {
		return err
	}

	started = time.Now()
	defer func() { s.observer.ObserveStage("rolling", time.Since(started)) }()
	for _, kind := range []gamestats.Kind{gamestats.KindSkater, gamestats.KindGoalie} {
		n, err := s.rolling.Recompute(ctx, kind, result.Touched(kind))
		report.Rolling += n
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *PipelineService) extract(ctx context.Context, date time.Time) (RawBatch, error) {
	started := time.Now()
	defer func() { s.observer.ObserveStage(string(StageExtract), time.Since(started)) }()
	return s.extractor.ExtractDate(ctx, date)
}

func (s *PipelineService) transform(ctx context.Context, raw RawBatch) CanonicalBatch {
	started := time.Now()
	defer func() { s.observer.ObserveStage(string(StageTransform), time.Since(started)) }()
	return s.transformer.TransformBatch(ctx, raw)
}

func (s *PipelineService) dryRun(ctx context.Context, report *RunReport) error {
	for _, date := range report.Window.Dates() {
		raw, err := s.extract(ctx, date)
		if err != nil {
			return err
		}
		batch := s.transform(ctx, raw)
		report.Counts.Extracted += raw.RowsExtracted()
		report.Counts.Loaded += len(batch.Games) + len(batch.Skaters) + len(batch.Goalies)
		report.Counts.Rejected += len(batch.Rejections)
		report.Failures = append(report.Failures, raw.Failures...)
	}
	s.logger.InfoContext(ctx, "dry run finished",
		"rows_extracted", report.Counts.Extracted,
		"rows_loadable", report.Counts.Loaded,
		"rows_rejected", report.Counts.Rejected,
		"failures", len(report.Failures),
	)
	return nil
}

// runStage executes one stage over staged files without touching
// pipeline_runs.
func (s *PipelineService) runStage(ctx context.Context, stage Stage, report *RunReport) error {
	if s.staging == nil {
		return fmt.Errorf("%w: staging is not configured", ErrDependencyUnavailable)
	}
	for _, date := range report.Window.Dates() {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch stage {
		case StageExtract:
			raw, err := s.extract(ctx, date)
			if err != nil {
				return err
			}
			report.Counts.Extracted += raw.RowsExtracted()
			report.Failures = append(report.Failures, raw.Failures...)
			path, err := s.staging.WriteRaw(ctx, raw)
			if err != nil {
				return fmt.Errorf("stage raw batch %s: %w", date.Format(apiDateLayout), err)
			}
			report.Staged = append(report.Staged, path)
		case StageTransform:
			raw, err := s.staging.ReadRaw(ctx, date)
			if err != nil {
				return fmt.Errorf("read raw batch %s: %w", date.Format(apiDateLayout), err)
			}
			batch := s.transform(ctx, raw)
			report.Counts.Rejected += len(batch.Rejections)
			path, err := s.staging.WriteProcessed(ctx, batch)
			if err != nil {
				return fmt.Errorf("stage processed batch %s: %w", date.Format(apiDateLayout), err)
			}
			report.Staged = append(report.Staged, path)
		case StageLoad:
			batch, err := s.staging.ReadProcessed(ctx, date)
			if err != nil {
				return fmt.Errorf("read processed batch %s: %w", date.Format(apiDateLayout), err)
			}
			if err := s.loadAndRoll(ctx, batch, report); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown stage %q", ErrInvalidInput, stage)
		}
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%w: %s", ErrIncompleteExtract, summarizeFailures(report.Failures))
	}
	return nil
}

func summarizeFailures(failures []FetchFailure) string {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, f := range failures {
		if i == shown {
			parts = append(parts, fmt.Sprintf("and %d more", len(failures)-shown))
			break
		}
		parts = append(parts, f.Entity+"="+f.Key)
	}
	return strings.Join(parts, ", ")
}
