package model

import "time"

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusConfirmed = "confirmed"
	AppointmentStatusCanceled  = "canceled"
	AppointmentStatusCompleted = "completed"
)

// ActiveAppointmentStatuses are the statuses that occupy a visit slot.
var ActiveAppointmentStatuses = []string{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
}

const (
	VisitDateFormat = "2006-01-02"
	VisitTimeFormat = "15:04"
)

// Appointment is a scheduled visit request tied to one listing. VisitDate and
// VisitTime are stored in their wire formats (zero-padded, so lexicographic
// order matches chronological order) and parsed at the service boundary.
type Appointment struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ListingID string `json:"listing_id" bson:"listing_id" validate:"required"`
	UserID    string `json:"user_id,omitempty" bson:"user_id,omitempty" validate:"omitempty,mongodb"`

	VisitDate string `json:"visit_date" bson:"visit_date" validate:"required"`
	VisitTime string `json:"visit_time" bson:"visit_time" validate:"required"`

	Status string `json:"status" bson:"status" validate:"omitempty,oneof=pending confirmed canceled completed"`

	ContactName string `json:"contact_name" bson:"contact_name" validate:"required,min=2,max=100"`
	Phone       string `json:"phone" bson:"phone" validate:"required,min=8,max=20"`
	Email       string `json:"email" bson:"email" validate:"required,email,max=120"`
	Message     string `json:"message,omitempty" bson:"message,omitempty" validate:"omitempty,max=2000"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Listing is the denormalized summary attached on reads. It is resolved
	// per request, never persisted, and stays nil when the listing has been
	// deleted since the appointment was made.
	Listing *ListingSummary `json:"listing,omitempty" bson:"-"`
}

// IsActive reports whether the appointment occupies its visit slot.
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusConfirmed
}

// AppointmentUpdate enumerates the mutable appointment fields. Status and the
// visit date/time use the empty string for "not supplied"; Message is a
// pointer so it can be cleared explicitly.
type AppointmentUpdate struct {
	Status    string  `json:"status,omitempty"`
	VisitDate string  `json:"visit_date,omitempty"`
	VisitTime string  `json:"visit_time,omitempty"`
	Message   *string `json:"message,omitempty" validate:"omitempty,max=2000"`
}

// AppointmentFilter is the list-endpoint input: zero fields are not applied.
// DateFrom and DateTo are inclusive bounds on the visit date.
type AppointmentFilter struct {
	ListingID string
	UserID    string
	Status    string
	DateFrom  string
	DateTo    string
}

// DaySlots is the availability report for one listing and date.
type DaySlots struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
	OccupiedSlots  []string `json:"occupied_slots"`
}
