package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "moradia/pkg/errors"
	"moradia/pkg/logger"
	"moradia/pkg/model"
)

type mockAppointmentService struct {
	createFunc         func(ctx context.Context, a *model.Appointment) error
	getByIDFunc        func(ctx context.Context, id string) (*model.Appointment, error)
	searchFunc         func(ctx context.Context, f model.AppointmentFilter, page, perPage int) ([]*model.Appointment, int64, error)
	updateFunc         func(ctx context.Context, id string, u *model.AppointmentUpdate) (*model.Appointment, error)
	deleteFunc         func(ctx context.Context, id string) error
	availableSlotsFunc func(ctx context.Context, listingID, date string) (*model.DaySlots, error)
}

func (m *mockAppointmentService) Create(ctx context.Context, a *model.Appointment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, a)
	}
	return nil
}

func (m *mockAppointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Appointment", id)
}

func (m *mockAppointmentService) Search(ctx context.Context, f model.AppointmentFilter, page, perPage int) ([]*model.Appointment, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, f, page, perPage)
	}
	return []*model.Appointment{}, 0, nil
}

func (m *mockAppointmentService) Update(ctx context.Context, id string, u *model.AppointmentUpdate) (*model.Appointment, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, u)
	}
	return nil, apperrors.NotFoundWithID("Appointment", id)
}

func (m *mockAppointmentService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockAppointmentService) AvailableSlots(ctx context.Context, listingID, date string) (*model.DaySlots, error) {
	if m.availableSlotsFunc != nil {
		return m.availableSlotsFunc(ctx, listingID, date)
	}
	return &model.DaySlots{Date: date}, nil
}

func testRouter(svc *mockAppointmentService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	router := httprouter.New()
	NewAppointmentHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestCreate_Conflict(t *testing.T) {
	svc := &mockAppointmentService{
		createFunc: func(ctx context.Context, a *model.Appointment) error {
			return apperrors.Conflict("An appointment already exists for this time slot")
		},
	}
	router := testRouter(svc)

	body := `{"listing_id":"507f1f77bcf86cd799439011","visit_date":"2025-03-10","visit_time":"14:00","contact_name":"Maria Silva","phone":"11987654321","email":"maria@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if _, ok := resp["error"]; !ok {
		t.Error("expected error key in response body")
	}
}

func TestCreate_InvalidJSON(t *testing.T) {
	router := testRouter(&mockAppointmentService{})

	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGetByID_DispatchesAvailableSlots(t *testing.T) {
	var gotListingID, gotDate string
	svc := &mockAppointmentService{
		availableSlotsFunc: func(ctx context.Context, listingID, date string) (*model.DaySlots, error) {
			gotListingID = listingID
			gotDate = date
			return &model.DaySlots{
				Date:           date,
				AvailableSlots: []string{"09:00", "10:00"},
				OccupiedSlots:  []string{"14:00"},
			}, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/appointments/available-slots?listing_id=507f1f77bcf86cd799439011&date=2025-03-10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotListingID != "507f1f77bcf86cd799439011" || gotDate != "2025-03-10" {
		t.Errorf("expected query params to reach the service, got %q %q", gotListingID, gotDate)
	}

	var slots model.DaySlots
	if err := json.Unmarshal(rec.Body.Bytes(), &slots); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(slots.AvailableSlots) != 2 || len(slots.OccupiedSlots) != 1 {
		t.Errorf("unexpected slot payload: %+v", slots)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	router := testRouter(&mockAppointmentService{})

	req := httptest.NewRequest(http.MethodGet, "/appointments/64b0c8f2e1a2b3c4d5e6f7a8", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestList_FiltersAndEnvelope(t *testing.T) {
	var gotFilter model.AppointmentFilter
	svc := &mockAppointmentService{
		searchFunc: func(ctx context.Context, f model.AppointmentFilter, page, perPage int) ([]*model.Appointment, int64, error) {
			gotFilter = f
			return []*model.Appointment{}, 0, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/appointments?listing_id=abc&status=pending&date_from=2025-03-01&date_to=2025-03-31", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotFilter.ListingID != "abc" || gotFilter.Status != "pending" {
		t.Errorf("expected filter params to pass through, got %+v", gotFilter)
	}
	if gotFilter.DateFrom != "2025-03-01" || gotFilter.DateTo != "2025-03-31" {
		t.Errorf("expected date range to pass through, got %+v", gotFilter)
	}

	var resp map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	for _, key := range []string{"appointments", "total", "pages", "current_page", "per_page", "has_next", "has_prev"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("expected %q in list envelope", key)
		}
	}
	if string(resp["appointments"]) != "[]" {
		t.Errorf("expected empty appointments array, got %s", resp["appointments"])
	}
}

func TestList_BadPagination(t *testing.T) {
	router := testRouter(&mockAppointmentService{})

	req := httptest.NewRequest(http.MethodGet, "/appointments?page=zero", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestUpdate_PassesThrough(t *testing.T) {
	svc := &mockAppointmentService{
		updateFunc: func(ctx context.Context, id string, u *model.AppointmentUpdate) (*model.Appointment, error) {
			return &model.Appointment{ID: id, Status: u.Status}, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodPut, "/appointments/64b0c8f2e1a2b3c4d5e6f7a8", strings.NewReader(`{"status":"confirmed"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var appointment model.Appointment
	if err := json.Unmarshal(rec.Body.Bytes(), &appointment); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if appointment.Status != "confirmed" {
		t.Errorf("expected status confirmed, got %q", appointment.Status)
	}
}

func TestDelete(t *testing.T) {
	router := testRouter(&mockAppointmentService{})

	req := httptest.NewRequest(http.MethodDelete, "/appointments/64b0c8f2e1a2b3c4d5e6f7a8", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
