package pipelinerun

import "time"

// Window is an inclusive range of game dates. Forced windows came from an
// explicit operator request.
type Window struct {
	Start  time.Time
	End    time.Time
	Forced bool
}

func (w Window) Empty() bool {
	return w.Start.After(w.End)
}

// Dates lists each day of the window in order.
func (w Window) Dates() []time.Time {
	if w.Empty() {
		return nil
	}
	var out []time.Time
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// ResolveWindow picks the dates a run processes. An explicit window wins.
// Otherwise the window runs from the last successful run's date, or from
// fallback when there is none, to today. The last day is reprocessed so late
// stat corrections are picked up.
func ResolveWindow(now time.Time, explicit *Window, last *Run, fallback time.Time) Window {
	if explicit != nil {
		return Window{Start: Day(explicit.Start), End: Day(explicit.End), Forced: true}
	}
	start := Day(fallback)
	if last != nil && !last.RunDate.IsZero() {
		start = Day(last.RunDate)
	}
	return Window{Start: start, End: Day(now)}
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
