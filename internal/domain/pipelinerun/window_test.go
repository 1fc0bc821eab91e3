package pipelinerun

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolveWindow(t *testing.T) {
	now := time.Date(2025, 1, 15, 18, 30, 0, 0, time.UTC)
	fallback := day("2024-10-04")

	w := ResolveWindow(now, nil, nil, fallback)
	if !w.Start.Equal(fallback) || !w.End.Equal(day("2025-01-15")) || w.Forced {
		t.Fatalf("unexpected first-run window: %+v", w)
	}

	last := &Run{RunDate: day("2025-01-12"), Status: StatusSuccess}
	w = ResolveWindow(now, nil, last, fallback)
	if !w.Start.Equal(day("2025-01-12")) {
		t.Fatalf("incremental window must start at the last success date, got %s", w.Start)
	}
	if len(w.Dates()) != 4 {
		t.Fatalf("expected 4 dates, got %d", len(w.Dates()))
	}

	explicit := &Window{Start: day("2024-11-01"), End: day("2024-11-01")}
	w = ResolveWindow(now, explicit, last, fallback)
	if !w.Forced || len(w.Dates()) != 1 {
		t.Fatalf("explicit window must be forced: %+v", w)
	}
}

func TestWindow_EmptyWhenStartAfterEnd(t *testing.T) {
	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	last := &Run{RunDate: day("2025-01-20")}

	w := ResolveWindow(now, nil, last, day("2024-10-04"))
	if !w.Empty() || w.Dates() != nil {
		t.Fatalf("expected empty window, got %+v", w)
	}
}
