package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Eudes-Dev/medical-app/internal/platform/auth"
)

// PatientDirectory is how the scheduler sees patient records: existence
// checks on booking and display names for conflict messages. The patient
// service satisfies it.
type PatientDirectory interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	PatientName(ctx context.Context, id uuid.UUID) (string, error)
}

// Invalidator is notified after every successful mutation so cached
// calendar windows are re-fetched. The calendar view satisfies it.
type Invalidator interface {
	ClearCache()
}

// Service orchestrates appointment scheduling: conflict checks on every
// booking, status transitions, and window queries.
type Service struct {
	repo     Repository
	detector *Detector
	patients PatientDirectory
	logger   zerolog.Logger
	inv      Invalidator
}

func NewService(repo Repository, patients PatientDirectory, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		detector: NewDetector(repo),
		patients: patients,
		logger:   logger,
	}
}

// SetInvalidator attaches an optional cache invalidation hook.
func (s *Service) SetInvalidator(inv Invalidator) { s.inv = inv }

// CreateInput carries the booking request. EndTime is derived, never given.
type CreateInput struct {
	PatientID       uuid.UUID
	StartTime       time.Time
	DurationMinutes int
	Type            string
	Notes           *string
}

// RescheduleInput carries a partial update; nil fields keep current values.
type RescheduleInput struct {
	StartTime       *time.Time
	DurationMinutes *int
	Type            *string
	Notes           *string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Appointment, error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}
	if in.PatientID == uuid.Nil {
		return nil, invalidf("patient_id", "patient is required")
	}
	if in.StartTime.IsZero() {
		return nil, invalidf("start_time", "start time is required")
	}
	if err := validateDuration(in.DurationMinutes); err != nil {
		return nil, err
	}
	if in.Type == "" {
		return nil, invalidf("type", "appointment type is required")
	}
	if err := validateNotes(in.Notes); err != nil {
		return nil, err
	}

	if s.patients != nil {
		ok, err := s.patients.PatientExists(ctx, in.PatientID)
		if err != nil {
			return nil, s.failStorage(err, "patient lookup")
		}
		if !ok {
			return nil, invalidf("patient_id", "unknown patient")
		}
	}

	end := in.StartTime.Add(time.Duration(in.DurationMinutes) * time.Minute)
	conflicting, err := s.detector.Check(ctx, in.StartTime, end, uuid.Nil)
	if err != nil {
		return nil, s.failStorage(err, "conflict check")
	}
	if conflicting != nil {
		return nil, s.conflictError(ctx, conflicting)
	}

	a := &Appointment{
		PatientID: in.PatientID,
		StartTime: in.StartTime,
		EndTime:   end,
		Status:    StatusPending,
		Type:      in.Type,
		Notes:     in.Notes,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, s.failStorage(err, "create")
	}
	s.invalidate()
	return a, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}
	return s.fetch(ctx, id)
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, in RescheduleInput) (*Appointment, error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}
	a, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Type != nil && *in.Type == "" {
		return nil, invalidf("type", "appointment type cannot be empty")
	}
	if err := validateNotes(in.Notes); err != nil {
		return nil, err
	}

	start := a.StartTime
	if in.StartTime != nil {
		if in.StartTime.IsZero() {
			return nil, invalidf("start_time", "start time is required")
		}
		start = *in.StartTime
	}
	duration := a.DurationMinutes()
	if in.DurationMinutes != nil {
		duration = *in.DurationMinutes
	}
	if err := validateDuration(duration); err != nil {
		return nil, err
	}

	// Times changed: re-run the conflict check against everyone but us.
	if in.StartTime != nil || in.DurationMinutes != nil {
		end := start.Add(time.Duration(duration) * time.Minute)
		conflicting, err := s.detector.Check(ctx, start, end, a.ID)
		if err != nil {
			return nil, s.failStorage(err, "conflict check")
		}
		if conflicting != nil {
			return nil, s.conflictError(ctx, conflicting)
		}
		a.StartTime = start
		a.EndTime = end
	}

	if in.Type != nil {
		a.Type = *in.Type
	}
	if in.Notes != nil {
		a.Notes = in.Notes
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, s.failStorage(err, "reschedule")
	}
	s.invalidate()
	return a, nil
}

func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Appointment, error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}
	if !ValidStatus(status) {
		return nil, invalidf("status", "unknown status %q", status)
	}
	a, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Status == status {
		return a, nil
	}
	if !a.Status.CanTransitionTo(status) {
		return nil, invalidf("status", "cannot change a %s appointment to %s", a.Status, status)
	}
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, s.failStorage(err, "set status")
	}
	s.invalidate()
	return a, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requireCaller(ctx); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == ErrNotFound {
			return ErrNotFound
		}
		return s.failStorage(err, "delete")
	}
	s.invalidate()
	return nil
}

// ListInRange returns appointments intersecting [start, end], ascending by
// start time. An appointment only partially inside the window is included.
func (s *Service) ListInRange(ctx context.Context, start, end time.Time, includeCancelled bool) ([]*Appointment, error) {
	if err := requireCaller(ctx); err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, invalidf("range", "start and end are required")
	}
	if !end.After(start) {
		return nil, invalidf("range", "end must be after start")
	}
	items, err := s.repo.FindInRange(ctx, start, end, includeCancelled)
	if err != nil {
		return nil, s.failStorage(err, "list in range")
	}
	return items, nil
}

func requireCaller(ctx context.Context) error {
	if auth.UserIDFromContext(ctx) == "" {
		return ErrUnauthorized
	}
	return nil
}

func validateDuration(minutes int) error {
	if minutes <= 0 {
		return invalidf("duration_min", "duration must be positive")
	}
	if minutes > MaxDurationMinutes {
		return invalidf("duration_min", "duration must be at most %d minutes", MaxDurationMinutes)
	}
	return nil
}

func validateNotes(notes *string) error {
	if notes != nil && len(*notes) > MaxNotesLen {
		return invalidf("notes", "notes must be at most %d characters", MaxNotesLen)
	}
	return nil
}

func (s *Service) fetch(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, s.failStorage(err, "get")
	}
	return a, nil
}

func (s *Service) conflictError(ctx context.Context, conflicting *Appointment) error {
	label := conflicting.PatientID.String()
	if s.patients != nil {
		if name, err := s.patients.PatientName(ctx, conflicting.PatientID); err == nil && name != "" {
			label = name
		}
	}
	return &ConflictError{Conflicting: conflicting, PatientLabel: label}
}

func (s *Service) failStorage(err error, op string) error {
	s.logger.Error().Err(err).Str("op", op).Msg("appointment storage error")
	return ErrStorage
}

func (s *Service) invalidate() {
	if s.inv != nil {
		s.inv.ClearCache()
	}
}
