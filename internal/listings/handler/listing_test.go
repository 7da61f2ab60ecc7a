package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "moradia/pkg/errors"
	"moradia/pkg/logger"
	"moradia/pkg/model"
)

type mockListingService struct {
	getByIDFunc   func(ctx context.Context, id string) (*model.Listing, error)
	searchFunc    func(ctx context.Context, f model.ListingFilter, page, perPage int) ([]*model.Listing, int64, error)
	typesFunc     func(ctx context.Context) ([]string, error)
	citiesFunc    func(ctx context.Context) ([]string, error)
	districtsFunc func(ctx context.Context, city string) ([]string, error)
}

func (m *mockListingService) Create(ctx context.Context, l *model.Listing) error { return nil }

func (m *mockListingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, apperrors.NotFoundWithID("Listing", id)
}

func (m *mockListingService) Search(ctx context.Context, f model.ListingFilter, page, perPage int) ([]*model.Listing, int64, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, f, page, perPage)
	}
	return []*model.Listing{}, 0, nil
}

func (m *mockListingService) Update(ctx context.Context, id string, u *model.ListingUpdate) (*model.Listing, error) {
	return nil, apperrors.NotFoundWithID("Listing", id)
}

func (m *mockListingService) Delete(ctx context.Context, id string) error { return nil }

func (m *mockListingService) Types(ctx context.Context) ([]string, error) {
	if m.typesFunc != nil {
		return m.typesFunc(ctx)
	}
	return []string{}, nil
}

func (m *mockListingService) Cities(ctx context.Context) ([]string, error) {
	if m.citiesFunc != nil {
		return m.citiesFunc(ctx)
	}
	return []string{}, nil
}

func (m *mockListingService) Districts(ctx context.Context, city string) ([]string, error) {
	if m.districtsFunc != nil {
		return m.districtsFunc(ctx, city)
	}
	return []string{}, nil
}

func testRouter(svc *mockListingService) *httprouter.Router {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	router := httprouter.New()
	NewListingHandler(svc, log).RegisterRoutes(router)
	return router
}

func TestGetByID_ReservedSegments(t *testing.T) {
	var districtsCity string
	svc := &mockListingService{
		typesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"apartment", "house"}, nil
		},
		citiesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"São Paulo"}, nil
		},
		districtsFunc: func(ctx context.Context, city string) ([]string, error) {
			districtsCity = city
			return []string{"Centro", "Moema"}, nil
		},
	}
	router := testRouter(svc)

	cases := []struct {
		path    string
		key     string
		wantLen int
	}{
		{"/listings/types", "types", 2},
		{"/listings/cities", "cities", 1},
		{"/listings/districts?city=S%C3%A3o+Paulo", "districts", 2},
	}

	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var resp map[string][]string
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid JSON response: %v", err)
			}
			if len(resp[tc.key]) != tc.wantLen {
				t.Errorf("expected %d %s, got %v", tc.wantLen, tc.key, resp[tc.key])
			}
		})
	}

	if districtsCity != "São Paulo" {
		t.Errorf("expected city query param to reach the service, got %q", districtsCity)
	}
}

func TestGetByID_FallsThroughToLookup(t *testing.T) {
	var requestedID string
	svc := &mockListingService{
		getByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			requestedID = id
			return &model.Listing{ID: id, Title: "Apartamento Moderno no Centro"}, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/listings/507f1f77bcf86cd799439011", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if requestedID != "507f1f77bcf86cd799439011" {
		t.Errorf("expected lookup by path id, got %q", requestedID)
	}
}

func TestSearch_FilterParams(t *testing.T) {
	var gotFilter model.ListingFilter
	svc := &mockListingService{
		searchFunc: func(ctx context.Context, f model.ListingFilter, page, perPage int) ([]*model.Listing, int64, error) {
			gotFilter = f
			return []*model.Listing{}, 0, nil
		},
	}
	router := testRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/listings?search=centro&type=apartment&price_min=1000&price_max=3000&bedrooms=2&city=S%C3%A3o+Paulo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if gotFilter.Search != "centro" || gotFilter.Type != "apartment" || gotFilter.City != "São Paulo" {
		t.Errorf("unexpected filter: %+v", gotFilter)
	}
	if gotFilter.PriceMin == nil || *gotFilter.PriceMin != 1000 {
		t.Errorf("expected price_min 1000, got %v", gotFilter.PriceMin)
	}
	if gotFilter.PriceMax == nil || *gotFilter.PriceMax != 3000 {
		t.Errorf("expected price_max 3000, got %v", gotFilter.PriceMax)
	}
	if gotFilter.Bedrooms == nil || *gotFilter.Bedrooms != 2 {
		t.Errorf("expected bedrooms 2, got %v", gotFilter.Bedrooms)
	}
}

func TestSearch_MalformedPriceFilter(t *testing.T) {
	router := testRouter(&mockListingService{})

	req := httptest.NewRequest(http.MethodGet, "/listings?price_min=cheap", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestDelete_NoContent(t *testing.T) {
	router := testRouter(&mockListingService{})

	req := httptest.NewRequest(http.MethodDelete, "/listings/507f1f77bcf86cd799439011", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
}
