package appointment

import (
	"testing"
	"time"
)

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		if !ValidStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	for _, s := range []Status{"", "booked", "PENDING", "done"} {
		if ValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	blocked := []struct{ from, to Status }{
		{StatusConfirmed, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusConfirmed},
		{StatusCompleted, StatusConfirmed},
		{StatusCompleted, StatusCancelled},
		{StatusPending, StatusPending},
	}
	for _, tc := range blocked {
		if tc.from.CanTransitionTo(tc.to) {
			t.Errorf("expected %s -> %s to be blocked", tc.from, tc.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if StatusPending.IsTerminal() || StatusConfirmed.IsTerminal() {
		t.Error("pending and confirmed must not be terminal")
	}
	if !StatusCancelled.IsTerminal() || !StatusCompleted.IsTerminal() {
		t.Error("cancelled and completed must be terminal")
	}
}

func TestDurationMinutes_RoundsToNearest(t *testing.T) {
	start := time.Date(2026, 1, 27, 10, 0, 0, 0, time.UTC)
	a := &Appointment{StartTime: start, EndTime: start.Add(30*time.Minute + 30*time.Second)}
	if got := a.DurationMinutes(); got != 31 {
		t.Errorf("expected 31, got %d", got)
	}

	a.EndTime = start.Add(30*time.Minute + 29*time.Second)
	if got := a.DurationMinutes(); got != 30 {
		t.Errorf("expected 30, got %d", got)
	}
}
