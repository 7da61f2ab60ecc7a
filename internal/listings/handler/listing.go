package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"moradia/internal/listings/service"
	apperrors "moradia/pkg/errors"
	httputil "moradia/pkg/http"
	"moradia/pkg/logger"
	"moradia/pkg/model"
)

type ListingHandler struct {
	service service.ListingService
	log     *logger.Logger
}

func NewListingHandler(service service.ListingService, log *logger.Logger) *ListingHandler {
	return &ListingHandler{
		service: service,
		log:     log,
	}
}

// ListingsPage is the collection envelope for GET /listings.
type ListingsPage struct {
	Listings []*model.Listing `json:"listings"`
	httputil.Page
}

func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, perPage, err := httputil.ExtractPagination(r)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}

	query := r.URL.Query()
	filter := model.ListingFilter{
		Search:   query.Get("search"),
		Type:     query.Get("type"),
		District: query.Get("district"),
		City:     query.Get("city"),
	}

	if filter.PriceMin, err = httputil.OptionalFloat(r, "price_min"); err != nil {
		h.writeError(w, "Search", err)
		return
	}
	if filter.PriceMax, err = httputil.OptionalFloat(r, "price_max"); err != nil {
		h.writeError(w, "Search", err)
		return
	}
	if filter.Bedrooms, err = httputil.OptionalInt(r, "bedrooms"); err != nil {
		h.writeError(w, "Search", err)
		return
	}

	listings, total, err := h.service.Search(r.Context(), filter, page, perPage)
	if err != nil {
		h.writeError(w, "Search", err)
		return
	}
	if listings == nil {
		listings = []*model.Listing{}
	}

	if err := httputil.WriteSuccess(w, ListingsPage{
		Listings: listings,
		Page:     httputil.NewPage(total, page, perPage),
	}); err != nil {
		h.log.Error("failed to write response", "handler", "Search", "error", err)
	}
}

// GetByID also serves the reserved segments types/cities/districts, because
// httprouter cannot register static children next to a wildcard.
func (h *ListingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch id := ps.ByName("id"); id {
	case "types":
		h.types(w, r)
	case "cities":
		h.cities(w, r)
	case "districts":
		h.districts(w, r)
	default:
		listing, err := h.service.GetByID(r.Context(), id)
		if err != nil {
			h.writeError(w, "GetByID", err)
			return
		}
		if err := httputil.WriteSuccess(w, listing); err != nil {
			h.log.Error("failed to write response", "handler", "GetByID", "error", err)
		}
	}
}

func (h *ListingHandler) types(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.Types(r.Context())
	if err != nil {
		h.writeError(w, "Types", err)
		return
	}
	if err := httputil.WriteSuccess(w, map[string][]string{"types": types}); err != nil {
		h.log.Error("failed to write response", "handler", "Types", "error", err)
	}
}

func (h *ListingHandler) cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.Cities(r.Context())
	if err != nil {
		h.writeError(w, "Cities", err)
		return
	}
	if err := httputil.WriteSuccess(w, map[string][]string{"cities": cities}); err != nil {
		h.log.Error("failed to write response", "handler", "Cities", "error", err)
	}
}

func (h *ListingHandler) districts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.service.Districts(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		h.writeError(w, "Districts", err)
		return
	}
	if err := httputil.WriteSuccess(w, map[string][]string{"districts": districts}); err != nil {
		h.log.Error("failed to write response", "handler", "Districts", "error", err)
	}
}

func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var listing model.Listing
	if err := json.NewDecoder(r.Body).Decode(&listing); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Create(r.Context(), &listing); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, listing); err != nil {
		h.log.Error("failed to write response", "handler", "Create", "error", err)
	}
}

func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ListingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	listing, err := h.service.Update(r.Context(), id, &updates)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, listing); err != nil {
		h.log.Error("failed to write response", "handler", "Update", "error", err)
	}
}

func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ListingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeInternal {
		h.log.Error("request failed", "handler", handlerName, "error", err)
	}
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *ListingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/listings", h.Search)
	router.POST("/listings", h.Create)
	router.GET("/listings/:id", h.GetByID)
	router.PUT("/listings/:id", h.Update)
	router.DELETE("/listings/:id", h.Delete)
}
