package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 1, 27, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(9, 0), at(10, 0), at(9, 0), at(10, 0), true},
		{"partial overlap", at(9, 0), at(9, 30), at(9, 15), at(9, 45), true},
		{"containment", at(9, 0), at(11, 0), at(9, 30), at(10, 0), true},
		{"back to back", at(9, 0), at(9, 30), at(9, 30), at(10, 0), false},
		{"disjoint", at(9, 0), at(9, 30), at(10, 0), at(10, 30), false},
		{"zero length first", at(9, 0), at(9, 0), at(8, 0), at(10, 0), false},
		{"zero length second", at(8, 0), at(10, 0), at(9, 0), at(9, 0), false},
		{"one minute overlap", at(9, 0), at(9, 31), at(9, 30), at(10, 0), true},
	}
	for _, tc := range tests {
		if got := Overlaps(tc.s1, tc.e1, tc.s2, tc.e2); got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestFirstOverlapping_SkipsCancelled(t *testing.T) {
	appts := []*Appointment{
		{ID: uuid.New(), StartTime: at(9, 0), EndTime: at(10, 0), Status: StatusCancelled},
	}
	if got := FirstOverlapping(appts, at(9, 0), at(10, 0), uuid.Nil); got != nil {
		t.Errorf("expected nil, got %v", got.ID)
	}
}

func TestFirstOverlapping_SkipsExcluded(t *testing.T) {
	id := uuid.New()
	appts := []*Appointment{
		{ID: id, StartTime: at(9, 0), EndTime: at(10, 0), Status: StatusConfirmed},
	}
	if got := FirstOverlapping(appts, at(9, 15), at(9, 45), id); got != nil {
		t.Errorf("expected self-exclusion, got %v", got.ID)
	}
	if got := FirstOverlapping(appts, at(9, 15), at(9, 45), uuid.Nil); got == nil {
		t.Error("expected conflict without exclusion")
	}
}

func TestFirstOverlapping_PicksEarliestStart(t *testing.T) {
	early := &Appointment{ID: uuid.New(), StartTime: at(9, 0), EndTime: at(10, 0), Status: StatusPending}
	late := &Appointment{ID: uuid.New(), StartTime: at(9, 30), EndTime: at(10, 30), Status: StatusPending}

	// Order in the slice must not matter.
	got := FirstOverlapping([]*Appointment{late, early}, at(9, 0), at(11, 0), uuid.Nil)
	if got == nil || got.ID != early.ID {
		t.Errorf("expected earliest-starting appointment, got %v", got)
	}
}

func TestFirstOverlapping_BackToBackFree(t *testing.T) {
	appts := []*Appointment{
		{ID: uuid.New(), StartTime: at(9, 0), EndTime: at(9, 30), Status: StatusPending},
	}
	if got := FirstOverlapping(appts, at(9, 30), at(10, 0), uuid.Nil); got != nil {
		t.Errorf("back-to-back must not conflict, got %v", got.ID)
	}
}
