package usecase

import "time"

// PipelineObserver receives run counters. *observability.PipelineMetrics
// implements it.
type PipelineObserver interface {
	AddRows(outcome string, n int)
	FetchFailed(entity, kind string)
	ObserveStage(stage string, d time.Duration)
	RunFinished(status string, at time.Time)
}

type nopObserver struct{}

func (nopObserver) AddRows(string, int)                {}
func (nopObserver) FetchFailed(string, string)         {}
func (nopObserver) ObserveStage(string, time.Duration) {}
func (nopObserver) RunFinished(string, time.Time)      {}

func observerOrNop(o PipelineObserver) PipelineObserver {
	if o == nil {
		return nopObserver{}
	}
	return o
}
