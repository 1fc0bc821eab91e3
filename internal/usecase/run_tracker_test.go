package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	pipelinerunmock "github.com/riskibarqy/nhl-warehouse/internal/mocks/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/id"
	"github.com/riskibarqy/nhl-warehouse/internal/platform/logging"
	"github.com/stretchr/testify/mock"
)

func newTracker(repo pipelinerun.Repository, now time.Time) *RunTracker {
	tracker := NewRunTracker(repo, id.Static("inv-7"), RunTrackerConfig{StartDate: day("2024-10-04"), MaxRejectRatio: 0.05}, logging.NewNop())
	tracker.now = func() time.Time { return now }
	return tracker
}

func TestRunTracker_ResolveWindow_StartsAtLastSuccess(t *testing.T) {
	t.Parallel()

	repo := pipelinerunmock.NewRepository(t)
	repo.
		On("LastSuccessful", mock.Anything).
		Return(pipelinerun.Run{ID: 3, RunDate: day("2025-01-12"), Status: pipelinerun.StatusSuccess}, true, nil).
		Once()

	tracker := newTracker(repo, time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC))
	w, err := tracker.ResolveWindow(t.Context(), nil)
	if err != nil {
		t.Fatalf("resolve window: %v", err)
	}
	if !w.Start.Equal(day("2025-01-12")) || !w.End.Equal(day("2025-01-15")) || w.Forced {
		t.Fatalf("unexpected window: %+v", w)
	}
}

func TestRunTracker_ResolveWindow_FallsBackToStartDate(t *testing.T) {
	t.Parallel()

	repo := pipelinerunmock.NewRepository(t)
	repo.On("LastSuccessful", mock.Anything).Return(pipelinerun.Run{}, false, nil).Once()

	tracker := newTracker(repo, time.Date(2024, 10, 6, 0, 0, 0, 0, time.UTC))
	w, err := tracker.ResolveWindow(t.Context(), nil)
	if err != nil {
		t.Fatalf("resolve window: %v", err)
	}
	if len(w.Dates()) != 3 || !w.Start.Equal(day("2024-10-04")) {
		t.Fatalf("unexpected first-run window: %+v", w)
	}
}

func TestRunTracker_StartAndFinish(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	repo := pipelinerunmock.NewRepository(t)
	repo.
		On("Start", mock.Anything, mock.MatchedBy(func(r pipelinerun.Run) bool {
			return r.InvocationID == "inv-7" && r.Status == pipelinerun.StatusRunning && r.RunDate.Equal(day("2025-01-15"))
		})).
		Return(func(_ context.Context, r pipelinerun.Run) (pipelinerun.Run, error) {
			r.ID = 11
			return r, nil
		}).
		Once()
	repo.
		On("Finish", mock.Anything, int64(11), mock.MatchedBy(func(o pipelinerun.Outcome) bool {
			return o.Status == pipelinerun.StatusSuccess && o.RowsLoaded == 100 && o.RowsRejected == 5 && o.ErrorMessage == ""
		})).
		Return(nil).
		Once()

	tracker := newTracker(repo, now)
	run, err := tracker.Start(t.Context(), pipelinerun.Window{Start: day("2025-01-12"), End: day("2025-01-15")})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	// 5 of 105 is under the 5% ceiling.
	status, err := tracker.Finish(t.Context(), run, RunCounts{Extracted: 120, Loaded: 100, Rejected: 5}, nil)
	if err != nil || status != pipelinerun.StatusSuccess {
		t.Fatalf("finish: status=%s err=%v", status, err)
	}
}

func TestRunTracker_FinishFailsOverRejectRatio(t *testing.T) {
	t.Parallel()

	repo := pipelinerunmock.NewRepository(t)
	repo.
		On("Finish", mock.Anything, int64(4), mock.MatchedBy(func(o pipelinerun.Outcome) bool {
			return o.Status == pipelinerun.StatusFailed && o.ErrorMessage != ""
		})).
		Return(nil).
		Once()

	tracker := newTracker(repo, time.Now())
	status, err := tracker.Finish(t.Context(), pipelinerun.Run{ID: 4}, RunCounts{Loaded: 10, Rejected: 10}, nil)
	if !errors.Is(err, ErrRejectRatioExceeded) || status != pipelinerun.StatusFailed {
		t.Fatalf("expected reject ratio failure, got status=%s err=%v", status, err)
	}
}

func TestRunTracker_FinishTwiceIsAnError(t *testing.T) {
	t.Parallel()

	repo := pipelinerunmock.NewRepository(t)
	repo.On("Finish", mock.Anything, int64(4), mock.Anything).Return(pipelinerun.ErrAlreadyFinished).Once()

	tracker := newTracker(repo, time.Now())
	if _, err := tracker.Finish(t.Context(), pipelinerun.Run{ID: 4}, RunCounts{}, nil); !errors.Is(err, pipelinerun.ErrAlreadyFinished) {
		t.Fatalf("expected ErrAlreadyFinished, got %v", err)
	}
}

func TestRunTracker_ListRejectsBadLimit(t *testing.T) {
	t.Parallel()

	tracker := newTracker(pipelinerunmock.NewRepository(t), time.Now())
	if _, err := tracker.List(t.Context(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
