// Package daterange resolves the dashboard's named date filters into
// concrete calendar windows.
package daterange

import (
	"time"

	"github.com/rotisserie/eris"
)

// Filter selectors accepted by Resolve.
const (
	SelectorNext30 = "0-30"
	Selector30to60 = "30-60"
	Selector60to90 = "60-90"
	SelectorAll    = "all"
	SelectorCustom = "custom"
)

// Window is a calendar window with inclusive bounds on both sides. An
// unbounded upper end (the "all" selector) has HasEnd false.
type Window struct {
	Start  time.Time
	End    time.Time
	HasEnd bool
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	if t.Before(w.Start) {
		return false
	}
	if w.HasEnd && t.After(w.End) {
		return false
	}
	return true
}

// StartDate returns the lower bound as an ISO date on its calendar day.
func (w Window) StartDate() string {
	return w.Start.Format("2006-01-02")
}

// EndDate returns the upper bound as an ISO date, or "" when unbounded.
func (w Window) EndDate() string {
	if !w.HasEnd {
		return ""
	}
	return w.End.Format("2006-01-02")
}

// Resolve converts a filter selector into a concrete window anchored at the
// start of today's calendar day. A custom range with only one bound present
// is treated as unset and falls back to the 0-30 window; this is a policy
// choice, not a gap, so half-configured filters behave predictably.
func Resolve(selector string, today time.Time, customStart, customEnd *time.Time) (Window, error) {
	day := startOfDay(today)

	switch selector {
	case SelectorNext30:
		return Window{Start: day, End: day.AddDate(0, 0, 30), HasEnd: true}, nil
	case Selector30to60:
		return Window{Start: day.AddDate(0, 0, 30), End: day.AddDate(0, 0, 60), HasEnd: true}, nil
	case Selector60to90:
		return Window{Start: day.AddDate(0, 0, 60), End: day.AddDate(0, 0, 90), HasEnd: true}, nil
	case SelectorAll:
		return Window{Start: day}, nil
	case SelectorCustom:
		if customStart != nil && customEnd != nil {
			return Window{
				Start:  startOfDay(*customStart),
				End:    startOfDay(*customEnd),
				HasEnd: true,
			}, nil
		}
		return Window{Start: day, End: day.AddDate(0, 0, 30), HasEnd: true}, nil
	default:
		return Window{}, eris.Errorf("daterange: unknown selector %q", selector)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
