package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"moradia/internal/appointments/service"
	apperrors "moradia/pkg/errors"
	httputil "moradia/pkg/http"
	"moradia/pkg/logger"
	"moradia/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

// AppointmentsPage is the paginated list envelope.
type AppointmentsPage struct {
	Appointments []*model.Appointment `json:"appointments"`
	httputil.Page
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var appointment model.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	if err := h.service.Create(r.Context(), &appointment); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteCreated(w, appointment)
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, perPage, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	filter := model.AppointmentFilter{
		ListingID: query.Get("listing_id"),
		UserID:    query.Get("user_id"),
		Status:    query.Get("status"),
		DateFrom:  query.Get("date_from"),
		DateTo:    query.Get("date_to"),
	}

	appointments, total, err := h.service.Search(r.Context(), filter, page, perPage)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if appointments == nil {
		appointments = []*model.Appointment{}
	}

	httputil.WriteSuccess(w, AppointmentsPage{
		Appointments: appointments,
		Page:         httputil.NewPage(total, page, perPage),
	})
}

// GetByID also serves GET /appointments/available-slots: the router cannot
// mix a static segment with the :id wildcard, so the reserved name is
// dispatched here.
func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "available-slots" {
		h.availableSlots(w, r)
		return
	}

	appointment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, appointment)
}

func (h *AppointmentHandler) availableSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	listingID := query.Get("listing_id")
	date := query.Get("date")

	slots, err := h.service.AvailableSlots(r.Context(), listingID, date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, slots)
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, r, apperrors.InvalidInput("Invalid JSON in request body"))
		return
	}

	appointment, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, appointment)
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	httputil.WriteSuccess(w, map[string]string{"message": "Appointment deleted successfully"})
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeInternal {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "path", r.URL.Path, "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/appointments", h.List)
	router.POST("/appointments", h.Create)
	router.GET("/appointments/:id", h.GetByID)
	router.PUT("/appointments/:id", h.Update)
	router.DELETE("/appointments/:id", h.Delete)
}
