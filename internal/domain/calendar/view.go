package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Eudes-Dev/medical-app/internal/domain/appointment"
	"github.com/Eudes-Dev/medical-app/internal/platform/prefs"
)

// Granularity selects how wide a window the calendar shows at once.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ValidGranularity reports whether g is a known granularity value.
func ValidGranularity(g Granularity) bool {
	return g == Day || g == Week || g == Month
}

// View is the navigable calendar state for one session: the pivot date the
// display is centered on, the granularity, the cancelled-visibility filter,
// and a cache of appointment windows keyed by view key. It is created once
// at startup and injected into its consumers; HTTP handlers share it, so all
// state is guarded by a mutex.
//
// The cache stores raw fetched windows including cancelled appointments;
// hiding them is a read-time filter, so toggling the flag never invalidates.
// Any appointment mutation clears the whole cache through ClearCache, which
// also satisfies the scheduling service's invalidation hook.
type View struct {
	mu            sync.RWMutex
	pivot         time.Time
	granularity   Granularity
	showCancelled bool
	cache         map[string][]*appointment.Appointment

	store  prefs.Store
	logger zerolog.Logger
	now    func() time.Time
}

// NewView returns a View pivoted on today with week granularity and
// cancellations hidden, then overlays any preferences persisted by a prior
// session. pivot and cache always start fresh; only granularity and the
// cancelled filter survive restarts.
func NewView(ctx context.Context, store prefs.Store, logger zerolog.Logger) *View {
	v := &View{
		granularity: Week,
		cache:       make(map[string][]*appointment.Appointment),
		store:       store,
		logger:      logger,
		now:         time.Now,
	}
	v.pivot = startOfDay(v.now())

	if store != nil {
		p, err := store.Load(ctx)
		switch {
		case err != nil:
			logger.Warn().Err(err).Msg("calendar preferences unavailable, using defaults")
		case p != nil:
			if g := Granularity(p.Granularity); ValidGranularity(g) {
				v.granularity = g
			}
			v.showCancelled = p.ShowCancelled
		}
	}
	return v
}

// Pivot returns the anchor date of the current window (start of day).
func (v *View) Pivot() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pivot
}

// Granularity returns the current window width.
func (v *View) Granularity() Granularity {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.granularity
}

// ShowCancelled reports whether cancelled appointments are displayed.
func (v *View) ShowCancelled() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.showCancelled
}

// Next advances the pivot by one granularity unit: a day, a week, or a
// calendar month. Month steps land on the same day-of-month, clamped when
// the target month is shorter (Jan 31 -> Feb 28/29).
func (v *View) Next() {
	v.step(1)
}

// Previous retreats the pivot by one granularity unit.
func (v *View) Previous() {
	v.step(-1)
}

func (v *View) step(dir int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch v.granularity {
	case Day:
		v.pivot = v.pivot.AddDate(0, 0, dir)
	case Week:
		v.pivot = v.pivot.AddDate(0, 0, 7*dir)
	case Month:
		v.pivot = addMonthsClamped(v.pivot, dir)
	}
}

// Today resets the pivot to the start of the current day. Granularity and
// the cancelled filter are untouched.
func (v *View) Today() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pivot = startOfDay(v.now())
}

// SetDate moves the pivot to the start of day of d.
func (v *View) SetDate(d time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pivot = startOfDay(d)
}

// SetGranularity switches the window width without moving the pivot and
// persists the preference. Unknown values are ignored.
func (v *View) SetGranularity(g Granularity) {
	if !ValidGranularity(g) {
		return
	}
	v.mu.Lock()
	v.granularity = g
	v.mu.Unlock()
	v.persistPrefs()
}

// ToggleShowCancelled flips the cancelled filter and persists it. The cache
// keeps its raw windows; only the read-time filter changes.
func (v *View) ToggleShowCancelled() bool {
	v.mu.Lock()
	v.showCancelled = !v.showCancelled
	on := v.showCancelled
	v.mu.Unlock()
	v.persistPrefs()
	return on
}

func (v *View) persistPrefs() {
	if v.store == nil {
		return
	}
	v.mu.RLock()
	p := prefs.Prefs{Granularity: string(v.granularity), ShowCancelled: v.showCancelled}
	v.mu.RUnlock()
	if err := v.store.Save(context.Background(), p); err != nil {
		v.logger.Warn().Err(err).Msg("failed to persist calendar preferences")
	}
}

// ViewKey identifies the current window for cache partitioning.
func (v *View) ViewKey() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return ViewKeyFor(v.pivot, v.granularity)
}

// ViewKeyFor derives the cache key for a date and granularity:
// day "2026-01-27", week "2026-W05" (ISO week, Monday start, week-based
// year), month "2026-01".
func ViewKeyFor(d time.Time, g Granularity) string {
	switch g {
	case Week:
		year, week := d.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return d.Format("2006-01")
	default:
		return d.Format("2006-01-02")
	}
}

// Window returns the half-open time range [start, end) the current view
// covers: the pivot's day, its ISO week from Monday, or its calendar month.
func (v *View) Window() (time.Time, time.Time) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	switch v.granularity {
	case Week:
		start := startOfISOWeek(v.pivot)
		return start, start.AddDate(0, 0, 7)
	case Month:
		start := time.Date(v.pivot.Year(), v.pivot.Month(), 1, 0, 0, 0, 0, v.pivot.Location())
		return start, start.AddDate(0, 1, 0)
	default:
		return v.pivot, v.pivot.AddDate(0, 0, 1)
	}
}

// SetAppointments caches the fetched window under key. The slice is copied
// so later navigation cannot mutate a cached snapshot; a nil list is stored
// as empty, keeping "cached empty" distinct from "not cached".
func (v *View) SetAppointments(key string, appts []*appointment.Appointment) {
	snapshot := make([]*appointment.Appointment, len(appts))
	copy(snapshot, appts)
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache[key] = snapshot
}

// Appointments returns the cached window for key. ok is false when the
// window has never been fetched (or the cache was cleared), letting callers
// distinguish a miss from a cached empty day.
func (v *View) Appointments(key string) ([]*appointment.Appointment, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	cached, ok := v.cache[key]
	if !ok {
		return nil, false
	}
	out := make([]*appointment.Appointment, len(cached))
	copy(out, cached)
	return out, true
}

// ClearCache drops every cached window. The scheduling service calls it
// after each successful mutation so the next read re-fetches fresh data.
func (v *View) ClearCache() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cache = make(map[string][]*appointment.Appointment)
}

// CachedWindows reports how many windows are currently cached.
func (v *View) CachedWindows() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.cache)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfISOWeek returns the Monday of t's week.
func startOfISOWeek(t time.Time) time.Time {
	t = startOfDay(t)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}

// addMonthsClamped steps by whole calendar months, clamping the day-of-month
// so Jan 31 +1 lands on Feb 28/29 instead of overflowing into March.
func addMonthsClamped(t time.Time, months int) time.Time {
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	day := t.Day()
	if last := firstOfTarget.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}
