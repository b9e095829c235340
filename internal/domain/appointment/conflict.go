package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Overlaps checks if two half-open time ranges [start1,end1) and
// [start2,end2) overlap. Adjacent ranges (end1 == start2) are not
// considered overlapping. Zero-length ranges are not considered
// overlapping.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	if start1.Equal(end1) || start2.Equal(end2) {
		return false
	}
	return start1.Before(end2) && start2.Before(end1)
}

// FirstOverlapping applies the overlap test to a snapshot of appointments
// and returns the earliest-starting non-cancelled one that intersects
// [start, end), or nil when the slot is free. excludeID skips a single
// appointment so a reschedule does not collide with itself.
func FirstOverlapping(appts []*Appointment, start, end time.Time, excludeID uuid.UUID) *Appointment {
	var found *Appointment
	for _, a := range appts {
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		if a.Status == StatusCancelled {
			continue
		}
		if !Overlaps(a.StartTime, a.EndTime, start, end) {
			continue
		}
		if found == nil || a.StartTime.Before(found.StartTime) {
			found = a
		}
	}
	return found
}

// Detector answers slot-availability questions against the repository.
// The check is read-then-act with no transactional isolation: it is
// correct for non-racing callers, and strict no-overlap guarantees need
// a storage-level exclusion constraint on the appointments table.
type Detector struct {
	repo Repository
}

func NewDetector(repo Repository) *Detector {
	return &Detector{repo: repo}
}

// Check returns the conflicting appointment for the candidate interval,
// or nil when the slot is free.
func (d *Detector) Check(ctx context.Context, start, end time.Time, excludeID uuid.UUID) (*Appointment, error) {
	existing, err := d.repo.FindOverlapping(ctx, start, end, excludeID)
	if err != nil {
		return nil, err
	}
	return FirstOverlapping(existing, start, end, excludeID), nil
}
