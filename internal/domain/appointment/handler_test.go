package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *Service, uuid.UUID) {
	svc, _, doctorID := newTestService()
	return NewHandler(svc), svc, doctorID
}

func postCreate(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func createBody(doctorID uuid.UUID, tm string) string {
	return fmt.Sprintf(`{"doctor_id":%q,"patient_name":"Asha Verma","date":"2026-09-14","time":%q}`, doctorID, tm)
}

func TestHandler_CreateAppointment(t *testing.T) {
	h, _, doctorID := newTestHandler()

	rec := postCreate(t, h, createBody(doctorID, "09:35"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var a Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected status SCHEDULED, got %s", a.Status)
	}
	if a.ID == uuid.Nil {
		t.Error("expected an ID in the response")
	}
}

func TestHandler_CreateAppointment_ValidationFails(t *testing.T) {
	h, _, doctorID := newTestHandler()

	body := fmt.Sprintf(`{"doctor_id":%q,"date":"2026-09-14","time":"09:35"}`, doctorID)
	rec := postCreate(t, h, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing patient_name, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "patient_name") {
		t.Errorf("expected the failing field in the response, got %s", rec.Body.String())
	}
}

func TestHandler_CreateAppointment_UnknownDoctor(t *testing.T) {
	h, _, _ := newTestHandler()

	rec := postCreate(t, h, createBody(uuid.New(), "09:35"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown doctor, got %d", rec.Code)
	}
}

func TestHandler_CreateAppointment_SlotUnavailable(t *testing.T) {
	h, _, doctorID := newTestHandler()

	rec := postCreate(t, h, createBody(doctorID, "11:00"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a slot outside availability, got %d", rec.Code)
	}
}

func TestHandler_CreateAppointment_SlotTaken(t *testing.T) {
	h, _, doctorID := newTestHandler()

	if rec := postCreate(t, h, createBody(doctorID, "09:35")); rec.Code != http.StatusCreated {
		t.Fatalf("first booking should succeed, got %d", rec.Code)
	}

	rec := postCreate(t, h, createBody(doctorID, "09:35"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a taken slot, got %d", rec.Code)
	}
}

func TestHandler_UpdateStatus_InvalidTransition(t *testing.T) {
	h, svc, doctorID := newTestHandler()

	a, err := svc.Create(context.Background(), validRequest(doctorID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), a.ID, StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+a.ID.String()+"/status",
		strings.NewReader(`{"status":"CONFIRMED"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(a.ID.String())

	if err := h.UpdateStatus(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a terminal-state transition, got %d", rec.Code)
	}
}

func TestHandler_GetAppointment_NotFound(t *testing.T) {
	h, _, _ := newTestHandler()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.NewString())

	if err := h.Get(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
