package calendar

import (
	"math"
	"time"
)

const (
	// DefaultStartHour and DefaultEndHour bound the displayed day (08:00-20:00).
	DefaultStartHour = 8
	DefaultEndHour   = 20
)

// Grid converts times of day into vertical positions on the calendar layout.
// Positions are percentages of the display window so the renderer stays
// resolution-independent. All methods clamp instead of failing: a time
// outside the window pins to the nearest edge.
type Grid struct {
	startHour int
	endHour   int
}

// NewGrid returns a Grid for the display window [startHour, endHour).
// A window that is empty or out of the 0-24 range falls back to the default.
func NewGrid(startHour, endHour int) Grid {
	if startHour < 0 || endHour > 24 || startHour >= endHour {
		return Grid{startHour: DefaultStartHour, endHour: DefaultEndHour}
	}
	return Grid{startHour: startHour, endHour: endHour}
}

// StartHour returns the first displayed hour.
func (g Grid) StartHour() int { return g.startHour }

// EndHour returns the hour the display window ends at (exclusive).
func (g Grid) EndHour() int { return g.endHour }

func (g Grid) totalMinutes() float64 {
	return float64((g.endHour - g.startHour) * 60)
}

// Top returns the vertical offset of t as a percentage of the display
// window, in [0, 100]. Times before the window start map to 0, times at or
// past the window end map to 100.
func (g Grid) Top(t time.Time) float64 {
	minutes := float64((t.Hour()-g.startHour)*60 + t.Minute())
	return clampPercent(minutes / g.totalMinutes() * 100)
}

// Height returns the rendered height of a duration as a percentage of the
// display window, in [0, 100]. Durations longer than the window are capped
// visually, not rejected; negative durations collapse to 0.
func (g Grid) Height(durationMinutes int) float64 {
	return clampPercent(float64(durationMinutes) / g.totalMinutes() * 100)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// DurationMinutes returns the span from start to end rounded to the nearest
// whole minute, so a 30.5-minute span reports 31. Reversed arguments yield a
// negative value; ordering is validated by callers, not here.
func DurationMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}
