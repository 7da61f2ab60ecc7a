package validator

import (
	"strings"
	"testing"

	"moradia/pkg/logger"
	"moradia/pkg/model"
)

func testValidator() *AppointmentValidator {
	return NewAppointmentValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	}))
}

func baseAppointment() *model.Appointment {
	return &model.Appointment{
		ListingID:   "507f1f77bcf86cd799439011",
		VisitDate:   "2025-03-10",
		VisitTime:   "14:00",
		ContactName: "Maria Silva",
		Phone:       "+5511987654321",
		Email:       "maria@example.com",
	}
}

func TestValidate_Valid(t *testing.T) {
	if err := testValidator().Validate(baseAppointment()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(a *model.Appointment)
		wantField string
	}{
		{"missing listing id", func(a *model.Appointment) { a.ListingID = "" }, "ListingID"},
		{"missing visit date", func(a *model.Appointment) { a.VisitDate = "" }, "VisitDate"},
		{"missing visit time", func(a *model.Appointment) { a.VisitTime = "" }, "VisitTime"},
		{"missing contact name", func(a *model.Appointment) { a.ContactName = "" }, "ContactName"},
		{"missing phone", func(a *model.Appointment) { a.Phone = "" }, "Phone"},
		{"missing email", func(a *model.Appointment) { a.Email = "" }, "Email"},
	}

	v := testValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appointment := baseAppointment()
			tc.mutate(appointment)

			err := v.Validate(appointment)
			if err == nil {
				t.Fatal("expected validation error")
			}

			verrs, ok := err.(ValidationErrors)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			if verrs.First() != tc.wantField {
				t.Errorf("expected field %s, got %s", tc.wantField, verrs.First())
			}
		})
	}
}

func TestValidate_InvalidEmail(t *testing.T) {
	appointment := baseAppointment()
	appointment.Email = "not-an-email"

	err := testValidator().Validate(appointment)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "valid email") {
		t.Errorf("expected email message, got %q", err.Error())
	}
}

func TestValidate_InvalidStatus(t *testing.T) {
	appointment := baseAppointment()
	appointment.Status = "approved"

	if err := testValidator().Validate(appointment); err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

func TestValidateUpdate(t *testing.T) {
	v := testValidator()

	cases := []struct {
		name    string
		update  model.AppointmentUpdate
		wantErr bool
	}{
		{"empty update", model.AppointmentUpdate{}, false},
		{"valid status", model.AppointmentUpdate{Status: model.AppointmentStatusConfirmed}, false},
		{"canceled", model.AppointmentUpdate{Status: model.AppointmentStatusCanceled}, false},
		{"completed", model.AppointmentUpdate{Status: model.AppointmentStatusCompleted}, false},
		{"unknown status", model.AppointmentUpdate{Status: "approved"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.ValidateUpdate(&tc.update)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateUpdate_LongMessage(t *testing.T) {
	long := strings.Repeat("a", 2001)
	err := testValidator().ValidateUpdate(&model.AppointmentUpdate{Message: &long})
	if err == nil {
		t.Fatal("expected validation error for oversized message")
	}
}
