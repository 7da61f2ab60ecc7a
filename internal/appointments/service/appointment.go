package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	appointmenterrors "moradia/internal/appointments/errors"
	"moradia/internal/appointments/repository"
	"moradia/internal/appointments/validator"
	listingerrors "moradia/internal/listings/errors"
	"moradia/pkg/config"
	apperrors "moradia/pkg/errors"
	"moradia/pkg/events"
	"moradia/pkg/model"
	"moradia/pkg/sanitizer"
)

// ListingDirectory is the narrow view of the listing store the scheduling
// engine needs: existence checks and batch summary lookups.
type ListingDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Listing, error)
}

type AppointmentService interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Search(ctx context.Context, filter model.AppointmentFilter, page, perPage int) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error)
	Delete(ctx context.Context, id string) error
	AvailableSlots(ctx context.Context, listingID, visitDate string) (*model.DaySlots, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	listings  ListingDirectory
	validator *validator.AppointmentValidator
	publisher events.Publisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	listings ListingDirectory,
	validator *validator.AppointmentValidator,
	publisher events.Publisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		listings:  listings,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) Create(ctx context.Context, appointment *model.Appointment) error {
	s.sanitize(appointment)
	s.applyDefaults(appointment)

	// The contract reports problems in a fixed order: missing fields, then
	// unknown listing, then unparseable date/time, then slot conflict.
	if err := s.validator.Validate(appointment); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "error", err)
		return validationError(err)
	}

	listing, err := s.listings.FindByID(ctx, appointment.ListingID)
	if err != nil {
		if errors.Is(err, listingerrors.ErrNotFound) || errors.Is(err, listingerrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Listing", appointment.ListingID)
		}
		return apperrors.Internal("Failed to verify listing", err)
	}

	if err := normalizeVisitDateTime(appointment); err != nil {
		return err
	}

	// Advisory lock first: concurrent requests for the same slot serialize
	// here, then the occupancy check inside the transaction decides.
	lockID, err := s.acquireSlotLock(ctx, appointment.ListingID, appointment.VisitDate, appointment.VisitTime)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.verifySlotFree(sessCtx, appointment); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, appointment); err != nil {
			// The unique partial index is the last line of defense
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("An appointment already exists for this time slot")
			}
			return apperrors.Internal("Failed to create appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"listing_id", appointment.ListingID,
			"visit_date", appointment.VisitDate,
			"visit_time", appointment.VisitTime,
			"error", err,
		)
		return err
	}

	appointment.Listing = summarize(listing)

	s.publish(ctx, events.TypeAppointmentCreated, appointment)

	s.cfg.Log.Info("Appointment created successfully",
		"id", appointment.ID,
		"listing_id", appointment.ListingID,
		"visit_date", appointment.VisitDate,
		"visit_time", appointment.VisitTime,
	)
	return nil
}

func (s *appointmentService) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appointment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	s.enrich(ctx, appointment)
	return appointment, nil
}

func (s *appointmentService) Search(ctx context.Context, filter model.AppointmentFilter, page, perPage int) ([]*model.Appointment, int64, error) {
	filter.Status = sanitizer.NormalizeLabel(filter.Status)

	var err error
	if filter.DateFrom != "" {
		if filter.DateFrom, err = normalizeDate(filter.DateFrom); err != nil {
			return nil, 0, apperrors.InvalidInput("Invalid date_from format. Use YYYY-MM-DD")
		}
	}
	if filter.DateTo != "" {
		if filter.DateTo, err = normalizeDate(filter.DateTo); err != nil {
			return nil, 0, apperrors.InvalidInput("Invalid date_to format. Use YYYY-MM-DD")
		}
	}

	offset := int64(page-1) * int64(perPage)

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountSearch(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", err)
			errCount = apperrors.Internal("Failed to count appointments", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		appointments, err = s.repo.Search(ctx, filter, perPage, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search appointments",
				"page", page,
				"per_page", perPage,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search appointments", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.enrichAll(ctx, appointments)
	return appointments, count, nil
}

func (s *appointmentService) Update(ctx context.Context, id string, updates *model.AppointmentUpdate) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	updates.Status = sanitizer.NormalizeLabel(updates.Status)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Appointment update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	previousStatus := existing.Status
	merged := *existing

	if updates.Status != "" {
		merged.Status = updates.Status
	}
	if updates.VisitDate != "" {
		if merged.VisitDate, err = normalizeDate(updates.VisitDate); err != nil {
			return nil, apperrors.InvalidInput("Invalid visit_date format. Use YYYY-MM-DD")
		}
	}
	if updates.VisitTime != "" {
		if merged.VisitTime, err = normalizeTime(updates.VisitTime); err != nil {
			return nil, apperrors.InvalidInput("Invalid visit_time format. Use HH:MM")
		}
	}
	if updates.Message != nil {
		merged.Message = *updates.Message
	}

	// Rescheduling deliberately skips the slot-conflict check; only brand-new
	// bookings compete for slots. The unique index still rejects a reschedule
	// that would collide with another active appointment.
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Update(sessCtx, id, &merged); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return apperrors.Conflict("An appointment already exists for this time slot")
			}
			if errors.Is(err, appointmenterrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Appointment", id)
			}
			return apperrors.Internal("Failed to update appointment", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
		return nil, err
	}

	if merged.Status != previousStatus {
		eventType := events.TypeAppointmentStatusChanged
		if merged.Status == model.AppointmentStatusCanceled {
			eventType = events.TypeAppointmentCanceled
		}
		s.publish(ctx, eventType, &merged)
	}

	s.enrich(ctx, &merged)

	s.cfg.Log.Info("Appointment updated successfully", "id", id, "status", merged.Status)
	return &merged, nil
}

func (s *appointmentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateRepoError(err, id)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id)
	}

	s.publish(ctx, events.TypeAppointmentDeleted, existing)

	s.cfg.Log.Info("Appointment deleted successfully", "id", id)
	return nil
}

// AvailableSlots reports which hourly visit slots remain open for a listing
// on a given date. The canonical window comes from configuration, 09:00
// through 18:00 inclusive by default.
func (s *appointmentService) AvailableSlots(ctx context.Context, listingID, visitDate string) (*model.DaySlots, error) {
	if listingID == "" {
		return nil, apperrors.InvalidInput("listing_id is required")
	}
	if visitDate == "" {
		return nil, apperrors.InvalidInput("date is required")
	}

	if _, err := s.listings.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, listingerrors.ErrNotFound) || errors.Is(err, listingerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Listing", listingID)
		}
		return nil, apperrors.Internal("Failed to verify listing", err)
	}

	date, err := normalizeDate(visitDate)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid date format. Use YYYY-MM-DD")
	}

	active, err := s.repo.FindActiveByListingAndDate(ctx, listingID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load appointments for slot computation",
			"listing_id", listingID,
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to compute available slots", err)
	}

	occupied := make([]string, 0, len(active))
	occupiedSet := make(map[string]struct{}, len(active))
	for _, a := range active {
		if _, seen := occupiedSet[a.VisitTime]; !seen {
			occupiedSet[a.VisitTime] = struct{}{}
			occupied = append(occupied, a.VisitTime)
		}
	}

	window := visitWindow(s.cfg.VisitDayStart, s.cfg.VisitDayEnd)
	available := make([]string, 0, len(window))
	for _, slot := range window {
		if _, taken := occupiedSet[slot]; !taken {
			available = append(available, slot)
		}
	}

	return &model.DaySlots{
		Date:           date,
		AvailableSlots: available,
		OccupiedSlots:  occupied,
	}, nil
}

// --- Helpers ---

func (s *appointmentService) sanitize(a *model.Appointment) {
	a.ContactName = sanitizer.NormalizeName(a.ContactName)
	a.Phone = sanitizer.NormalizePhone(a.Phone)
	a.Email = sanitizer.TrimAndNormalize(a.Email)
	a.Message = sanitizer.TrimAndNormalize(a.Message)
	a.Status = sanitizer.NormalizeLabel(a.Status)
}

func (s *appointmentService) applyDefaults(a *model.Appointment) {
	if a.Status == "" {
		a.Status = model.AppointmentStatusPending
	}
}

func (s *appointmentService) verifySlotFree(ctx context.Context, appointment *model.Appointment) error {
	existing, err := s.repo.FindActiveBySlot(ctx, appointment.ListingID, appointment.VisitDate, appointment.VisitTime)
	if err != nil {
		if errors.Is(err, appointmenterrors.ErrNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to check slot occupancy", err)
	}
	if existing != nil {
		return apperrors.Conflict("An appointment already exists for this time slot")
	}
	return nil
}

func (s *appointmentService) acquireSlotLock(ctx context.Context, listingID, visitDate, visitTime string) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s_%s", listingID, visitDate, visitTime)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(10 * time.Second),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This time slot is currently being booked by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *appointmentService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func (s *appointmentService) enrich(ctx context.Context, appointment *model.Appointment) {
	s.enrichAll(ctx, []*model.Appointment{appointment})
}

// enrichAll attaches listing summaries with a single batch lookup. Deleted
// listings simply leave the summary nil.
func (s *appointmentService) enrichAll(ctx context.Context, appointments []*model.Appointment) {
	if len(appointments) == 0 {
		return
	}

	seen := make(map[string]struct{}, len(appointments))
	ids := make([]string, 0, len(appointments))
	for _, a := range appointments {
		if _, ok := seen[a.ListingID]; !ok {
			seen[a.ListingID] = struct{}{}
			ids = append(ids, a.ListingID)
		}
	}

	found, err := s.listings.FindByIDs(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve listing summaries", "error", err)
		return
	}

	for _, a := range appointments {
		if listing, ok := found[a.ListingID]; ok {
			a.Listing = summarize(listing)
		}
	}
}

func (s *appointmentService) publish(ctx context.Context, eventType string, a *model.Appointment) {
	err := s.publisher.PublishAppointmentEvent(ctx, events.AppointmentEvent{
		Type:          eventType,
		AppointmentID: a.ID,
		ListingID:     a.ListingID,
		VisitDate:     a.VisitDate,
		VisitTime:     a.VisitTime,
		Status:        a.Status,
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"type", eventType,
			"appointment_id", a.ID,
			"error", err,
		)
	}
}

func summarize(listing *model.Listing) *model.ListingSummary {
	return &model.ListingSummary{
		ID:      listing.ID,
		Title:   listing.Title,
		Address: listing.Address.Full(),
	}
}

func normalizeVisitDateTime(a *model.Appointment) error {
	date, dateErr := normalizeDate(a.VisitDate)
	normalized, timeErr := normalizeTime(a.VisitTime)
	if dateErr != nil || timeErr != nil {
		return apperrors.InvalidInput("Invalid date/time format. Use YYYY-MM-DD for dates and HH:MM for times")
	}
	a.VisitDate = date
	a.VisitTime = normalized
	return nil
}

func normalizeDate(s string) (string, error) {
	t, err := time.Parse(model.VisitDateFormat, s)
	if err != nil {
		return "", err
	}
	return t.Format(model.VisitDateFormat), nil
}

func normalizeTime(s string) (string, error) {
	t, err := time.Parse(model.VisitTimeFormat, s)
	if err != nil {
		return "", err
	}
	return t.Format(model.VisitTimeFormat), nil
}

// visitWindow expands the configured day bounds into hourly slot labels,
// both ends inclusive.
func visitWindow(start, end string) []string {
	startHour := hourOf(start, 9)
	endHour := hourOf(end, 18)

	var slots []string
	for h := startHour; h <= endHour; h++ {
		slots = append(slots, fmt.Sprintf("%02d:00", h))
	}
	return slots
}

func hourOf(timeOfDay string, fallback int) int {
	t, err := time.Parse(model.VisitTimeFormat, timeOfDay)
	if err != nil {
		return fallback
	}
	return t.Hour()
}

func validationError(err error) error {
	details := map[string]any{"error": err.Error()}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && verrs.First() != "" {
		details["field"] = verrs.First()
	}
	return apperrors.Validation(err.Error(), details)
}

func translateRepoError(err error, id string) error {
	if errors.Is(err, appointmenterrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Appointment", id)
	}
	if errors.Is(err, appointmenterrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid appointment ID format")
	}
	return apperrors.Internal("Failed to access appointment", err)
}
