package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
)

type PipelineRunRepository struct {
	mu     sync.RWMutex
	nextID int64
	runs   map[int64]pipelinerun.Run
}

func NewPipelineRunRepository() *PipelineRunRepository {
	return &PipelineRunRepository{runs: make(map[int64]pipelinerun.Run)}
}

func (r *PipelineRunRepository) Start(_ context.Context, run pipelinerun.Run) (pipelinerun.Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	run.ID = r.nextID
	run.Status = pipelinerun.StatusRunning
	run.CompletedAt = nil
	r.runs[run.ID] = run
	return run, nil
}

func (r *PipelineRunRepository) Finish(_ context.Context, runID int64, outcome pipelinerun.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	run, ok := r.runs[runID]
	if !ok {
		return pipelinerun.ErrRunNotFound
	}
	if run.Status != pipelinerun.StatusRunning {
		return pipelinerun.ErrAlreadyFinished
	}
	completed := outcome.CompletedAt
	run.Status = outcome.Status
	run.CompletedAt = &completed
	run.RowsExtracted = outcome.RowsExtracted
	run.RowsLoaded = outcome.RowsLoaded
	run.RowsRejected = outcome.RowsRejected
	run.ErrorMessage = outcome.ErrorMessage
	r.runs[runID] = run
	return nil
}

// LastSuccessful returns the successful run with the latest run date.
func (r *PipelineRunRepository) LastSuccessful(_ context.Context) (pipelinerun.Run, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best pipelinerun.Run
	found := false
	for _, run := range r.runs {
		if run.Status != pipelinerun.StatusSuccess {
			continue
		}
		if !found || run.RunDate.After(best.RunDate) || (run.RunDate.Equal(best.RunDate) && run.ID > best.ID) {
			best = run
			found = true
		}
	}
	return best, found, nil
}

// List returns the newest runs first.
func (r *PipelineRunRepository) List(_ context.Context, limit int) ([]pipelinerun.Run, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pipelinerun.Run, 0, len(r.runs))
	for _, run := range r.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
