package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the storage contract the scheduling service depends on.
type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error

	// FindOverlapping returns non-cancelled appointments whose half-open
	// interval intersects [start, end), ordered by start_time. excludeID
	// (uuid.Nil for none) omits one appointment from the result.
	FindOverlapping(ctx context.Context, start, end time.Time, excludeID uuid.UUID) ([]*Appointment, error)

	// FindInRange returns appointments intersecting the window
	// (start_time < end AND end_time > start), ascending by start_time.
	// Cancelled appointments are filtered out unless includeCancelled.
	FindInRange(ctx context.Context, start, end time.Time, includeCancelled bool) ([]*Appointment, error)
}
