package appointment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Eudes-Dev/medical-app/internal/platform/auth"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func authedRequest(method, target string, body string) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	ctx := auth.WithUser(req.Context(), auth.User{ID: "dr-vega", Name: "Dr. Vega"})
	return req.WithContext(ctx)
}

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":30,"type":"consultation"}`
	req := authedRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"pending"`) {
		t.Errorf("expected pending status in response: %s", rec.Body.String())
	}
}

func TestHandler_Create_Unauthenticated(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":30,"type":"consultation"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestHandler_Create_Conflict(t *testing.T) {
	h, e := newTestHandler()
	mk := func() error {
		body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":30,"type":"consultation"}`
		req := authedRequest(http.MethodPost, "/", body)
		rec := httptest.NewRecorder()
		return h.Create(e.NewContext(req, rec))
	}
	if err := mk(); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := mk()
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", err)
	}
}

func TestHandler_Create_BadDuration(t *testing.T) {
	h, e := newTestHandler()
	body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":500,"type":"consultation"}`
	req := authedRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()

	err := h.Create(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e := newTestHandler()
	req := authedRequest(http.MethodGet, "/", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e := newTestHandler()
	req := authedRequest(http.MethodGet, "/", "")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_ListInRange(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":30,"type":"consultation"}`
	req := authedRequest(http.MethodPost, "/", body)
	if err := h.Create(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("setup create failed: %v", err)
	}

	req = authedRequest(http.MethodGet, "/?from=2026-01-27&to=2026-01-28", "")
	rec := httptest.NewRecorder()
	if err := h.ListInRange(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "consultation") {
		t.Errorf("expected appointment in response: %s", rec.Body.String())
	}
}

func TestHandler_ListInRange_BadTimeParam(t *testing.T) {
	h, e := newTestHandler()
	req := authedRequest(http.MethodGet, "/?from=yesterday&to=2026-01-28", "")
	rec := httptest.NewRecorder()

	err := h.ListInRange(e.NewContext(req, rec))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_SetStatus(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":30,"type":"consultation"}`
	req := authedRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("setup create failed: %v", err)
	}
	var created Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	req = authedRequest(http.MethodPatch, "/", `{"status":"confirmed"}`)
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.SetStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"status":"confirmed"`) {
		t.Errorf("expected confirmed status: %s", rec.Body.String())
	}
}

func TestHandler_Delete(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_id":"` + uuid.New().String() + `","start_time":"2026-01-27T09:00:00Z","duration_min":30,"type":"consultation"}`
	req := authedRequest(http.MethodPost, "/", body)
	rec := httptest.NewRecorder()
	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("setup create failed: %v", err)
	}
	var created Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}

	req = authedRequest(http.MethodDelete, "/", "")
	rec = httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
