package main

import (
	"fmt"
	"time"

	"github.com/riskibarqy/nhl-warehouse/internal/config"
	"github.com/riskibarqy/nhl-warehouse/internal/domain/pipelinerun"
	"github.com/riskibarqy/nhl-warehouse/internal/usecase"
)

type windowFlags struct {
	date        string
	dateRange   []string
	windowStart string
}

// resolve turns the mutually exclusive window flags into an explicit window,
// or nil for the incremental default.
func (f windowFlags) resolve(now time.Time) (*pipelinerun.Window, error) {
	set := 0
	for _, v := range []bool{f.date != "", len(f.dateRange) > 0, f.windowStart != ""} {
		if v {
			set++
		}
	}
	if set > 1 {
		return nil, fmt.Errorf("%w: --date, --date-range and --window-start are mutually exclusive", usecase.ErrInvalidInput)
	}

	switch {
	case f.date != "":
		day, err := config.ParseDate(f.date)
		if err != nil {
			return nil, fmt.Errorf("%w: --date: %v", usecase.ErrInvalidInput, err)
		}
		return &pipelinerun.Window{Start: day, End: day}, nil
	case len(f.dateRange) > 0:
		if len(f.dateRange) != 2 {
			return nil, fmt.Errorf("%w: --date-range takes START,END", usecase.ErrInvalidInput)
		}
		start, err := config.ParseDate(f.dateRange[0])
		if err != nil {
			return nil, fmt.Errorf("%w: --date-range start: %v", usecase.ErrInvalidInput, err)
		}
		end, err := config.ParseDate(f.dateRange[1])
		if err != nil {
			return nil, fmt.Errorf("%w: --date-range end: %v", usecase.ErrInvalidInput, err)
		}
		if start.After(end) {
			return nil, fmt.Errorf("%w: --date-range start %s is after end %s", usecase.ErrInvalidInput, f.dateRange[0], f.dateRange[1])
		}
		return &pipelinerun.Window{Start: start, End: end}, nil
	case f.windowStart != "":
		start, err := config.ParseDate(f.windowStart)
		if err != nil {
			return nil, fmt.Errorf("%w: --window-start: %v", usecase.ErrInvalidInput, err)
		}
		return &pipelinerun.Window{Start: start, End: pipelinerun.Day(now)}, nil
	default:
		return nil, nil
	}
}
