package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusCompleted: true,
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s Status) bool { return validStatuses[s] }

// IsTerminal reports whether no further transitions are allowed out of s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo reports whether the move from s to target is legal:
// pending -> confirmed, and {pending, confirmed} -> {cancelled, completed}.
// Cancelled and completed are terminal.
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch target {
	case StatusConfirmed:
		return s == StatusPending
	case StatusCancelled, StatusCompleted:
		return s == StatusPending || s == StatusConfirmed
	default:
		return false
	}
}

const (
	// MaxDurationMinutes bounds a single appointment length.
	MaxDurationMinutes = 240
	// MaxNotesLen bounds the free-text notes field.
	MaxNotesLen = 2000
)

// Appointment maps to the appointments table.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Status    Status    `db:"status" json:"status"`
	Type      string    `db:"type" json:"type"`
	Notes     *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DurationMinutes returns the appointment length rounded to whole minutes.
func (a *Appointment) DurationMinutes() int {
	return int(a.EndTime.Sub(a.StartTime).Round(time.Minute) / time.Minute)
}
