package calendar

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Eudes-Dev/medical-app/internal/domain/appointment"
)

// ApptLister fetches the appointments intersecting a window. The scheduling
// service satisfies it.
type ApptLister interface {
	ListInRange(ctx context.Context, start, end time.Time, includeCancelled bool) ([]*appointment.Appointment, error)
}

type Handler struct {
	view  *View
	grid  Grid
	appts ApptLister
}

func NewHandler(view *View, grid Grid, appts ApptLister) *Handler {
	return &Handler{view: view, grid: grid, appts: appts}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/calendar", h.Current)
	api.POST("/calendar/next", h.Next)
	api.POST("/calendar/previous", h.Previous)
	api.POST("/calendar/today", h.Today)
	api.PUT("/calendar/date", h.SetDate)
	api.PUT("/calendar/granularity", h.SetGranularity)
	api.POST("/calendar/show-cancelled/toggle", h.ToggleShowCancelled)
}

// entry is one rendered appointment: the record plus its vertical placement
// on the day grid.
type entry struct {
	*appointment.Appointment
	GridTop     float64 `json:"grid_top"`
	GridHeight  float64 `json:"grid_height"`
	DurationMin int     `json:"duration_min"`
}

// statePayload is the full calendar state returned by every endpoint, so a
// client can redraw after any navigation with a single response.
type statePayload struct {
	PivotDate     string      `json:"pivot_date"`
	Granularity   Granularity `json:"granularity"`
	ShowCancelled bool        `json:"show_cancelled"`
	ViewKey       string      `json:"view_key"`
	WindowStart   time.Time   `json:"window_start"`
	WindowEnd     time.Time   `json:"window_end"`
	Cached        bool        `json:"cached"`
	Appointments  []entry     `json:"appointments"`
}

// Current renders the view as-is, fetching the window on a cache miss.
func (h *Handler) Current(c echo.Context) error {
	return h.render(c)
}

// Next advances one day, week, or month depending on granularity.
func (h *Handler) Next(c echo.Context) error {
	h.view.Next()
	return h.render(c)
}

// Previous retreats one day, week, or month.
func (h *Handler) Previous(c echo.Context) error {
	h.view.Previous()
	return h.render(c)
}

// Today jumps the pivot back to the current date.
func (h *Handler) Today(c echo.Context) error {
	h.view.Today()
	return h.render(c)
}

type setDateRequest struct {
	Date string `json:"date"`
}

// SetDate moves the pivot to an arbitrary date.
func (h *Handler) SetDate(c echo.Context) error {
	var req setDateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := parseDate(req.Date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date: use RFC 3339 or YYYY-MM-DD")
	}
	h.view.SetDate(d)
	return h.render(c)
}

type setGranularityRequest struct {
	Granularity Granularity `json:"granularity"`
}

// SetGranularity switches between day, week and month views.
func (h *Handler) SetGranularity(c echo.Context) error {
	var req setGranularityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !ValidGranularity(req.Granularity) {
		return echo.NewHTTPError(http.StatusBadRequest, "granularity must be day, week or month")
	}
	h.view.SetGranularity(req.Granularity)
	return h.render(c)
}

// ToggleShowCancelled flips whether cancelled appointments are rendered.
func (h *Handler) ToggleShowCancelled(c echo.Context) error {
	h.view.ToggleShowCancelled()
	return h.render(c)
}

// render resolves the current window, fetching and caching it on a miss,
// then lays the appointments out on the grid. The cache always holds the
// raw window; cancelled entries are dropped here when hidden.
func (h *Handler) render(c echo.Context) error {
	key := h.view.ViewKey()
	start, end := h.view.Window()

	appts, cached := h.view.Appointments(key)
	if !cached {
		fetched, err := h.appts.ListInRange(c.Request().Context(), start, end, true)
		if err != nil {
			return httpError(err)
		}
		h.view.SetAppointments(key, fetched)
		appts = fetched
	}

	showCancelled := h.view.ShowCancelled()
	entries := make([]entry, 0, len(appts))
	for _, a := range appts {
		if a.Status == appointment.StatusCancelled && !showCancelled {
			continue
		}
		minutes := DurationMinutes(a.StartTime, a.EndTime)
		entries = append(entries, entry{
			Appointment: a,
			GridTop:     h.grid.Top(a.StartTime),
			GridHeight:  h.grid.Height(minutes),
			DurationMin: minutes,
		})
	}

	return c.JSON(http.StatusOK, statePayload{
		PivotDate:     h.view.Pivot().Format("2006-01-02"),
		Granularity:   h.view.Granularity(),
		ShowCancelled: showCancelled,
		ViewKey:       key,
		WindowStart:   start,
		WindowEnd:     end,
		Cached:        cached,
		Appointments:  entries,
	})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func httpError(err error) error {
	var ve *appointment.ValidationError
	switch {
	case errors.Is(err, appointment.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
