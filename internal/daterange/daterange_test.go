package daterange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolve_NamedSelectors(t *testing.T) {
	today := time.Date(2026, 1, 1, 14, 37, 12, 0, time.UTC)

	tests := []struct {
		selector  string
		wantStart time.Time
		wantEnd   time.Time
		unbounded bool
	}{
		{SelectorNext30, date(2026, 1, 1), date(2026, 1, 31), false},
		// Reference case: 30 and 60 days out, both bounds inclusive.
		{Selector30to60, date(2026, 1, 31), date(2026, 3, 2), false},
		{Selector60to90, date(2026, 3, 2), date(2026, 4, 1), false},
		{SelectorAll, date(2026, 1, 1), time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			w, err := Resolve(tt.selector, today, nil, nil)
			require.NoError(t, err)
			assert.True(t, tt.wantStart.Equal(w.Start), "start %v", w.Start)
			if tt.unbounded {
				assert.False(t, w.HasEnd)
			} else {
				require.True(t, w.HasEnd)
				assert.True(t, tt.wantEnd.Equal(w.End), "end %v", w.End)
			}
		})
	}
}

func TestResolve_AnchorsAtStartOfDay(t *testing.T) {
	lateEvening := time.Date(2026, 7, 4, 23, 59, 0, 0, time.UTC)
	w, err := Resolve(SelectorNext30, lateEvening, nil, nil)
	require.NoError(t, err)

	assert.True(t, w.Contains(date(2026, 7, 4)), "midnight of today is in the window")
}

func TestResolve_Custom(t *testing.T) {
	today := date(2026, 1, 1)
	start := date(2026, 2, 10)
	end := date(2026, 2, 20)

	w, err := Resolve(SelectorCustom, today, &start, &end)
	require.NoError(t, err)
	assert.True(t, start.Equal(w.Start))
	require.True(t, w.HasEnd)
	assert.True(t, end.Equal(w.End))
}

func TestResolve_CustomWithOneBoundFallsBack(t *testing.T) {
	today := date(2026, 1, 1)
	start := date(2026, 2, 10)

	// Policy: a single bound counts as unset, not as a half-open range.
	for _, args := range [][2]*time.Time{{&start, nil}, {nil, &start}, {nil, nil}} {
		w, err := Resolve(SelectorCustom, today, args[0], args[1])
		require.NoError(t, err)
		assert.True(t, date(2026, 1, 1).Equal(w.Start))
		require.True(t, w.HasEnd)
		assert.True(t, date(2026, 1, 31).Equal(w.End))
	}
}

func TestResolve_UnknownSelector(t *testing.T) {
	_, err := Resolve("90-120", date(2026, 1, 1), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "90-120")
}

func TestWindow_ContainsInclusiveBothSides(t *testing.T) {
	w := Window{Start: date(2026, 1, 31), End: date(2026, 3, 2), HasEnd: true}

	assert.True(t, w.Contains(date(2026, 1, 31)), "lower bound is inclusive")
	assert.True(t, w.Contains(date(2026, 3, 2)), "upper bound is inclusive")
	assert.True(t, w.Contains(date(2026, 2, 14)))
	assert.False(t, w.Contains(date(2026, 1, 30)))
	assert.False(t, w.Contains(date(2026, 3, 3)))
}

func TestWindow_Unbounded(t *testing.T) {
	w := Window{Start: date(2026, 1, 1)}
	assert.True(t, w.Contains(date(2099, 12, 31)))
	assert.False(t, w.Contains(date(2025, 12, 31)))
}

func TestWindow_ISODates(t *testing.T) {
	w := Window{Start: date(2026, 1, 31), End: date(2026, 3, 2), HasEnd: true}
	assert.Equal(t, "2026-01-31", w.StartDate())
	assert.Equal(t, "2026-03-02", w.EndDate())

	assert.Empty(t, Window{Start: date(2026, 1, 1)}.EndDate())
}
