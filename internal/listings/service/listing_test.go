package service

import (
	"context"
	"testing"
	"time"

	listingerrors "moradia/internal/listings/errors"
	"moradia/internal/listings/validator"
	"moradia/pkg/config"
	apperrors "moradia/pkg/errors"
	"moradia/pkg/logger"
	"moradia/pkg/model"
)

type mockListingRepository struct {
	createFunc            func(ctx context.Context, l *model.Listing) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Listing, error)
	findByIDsFunc         func(ctx context.Context, ids []string) (map[string]*model.Listing, error)
	searchFunc            func(ctx context.Context, f model.ListingFilter, limit int, offset int64) ([]*model.Listing, error)
	countSearchFunc       func(ctx context.Context, f model.ListingFilter) (int64, error)
	updateFunc            func(ctx context.Context, id string, l *model.Listing) error
	deleteFunc            func(ctx context.Context, id string) error
	countFunc             func(ctx context.Context) (int64, error)
	distinctTypesFunc     func(ctx context.Context) ([]string, error)
	distinctCitiesFunc    func(ctx context.Context) ([]string, error)
	distinctDistrictsFunc func(ctx context.Context, city string) ([]string, error)
}

func (m *mockListingRepository) Create(ctx context.Context, l *model.Listing) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, l)
	}
	l.ID = "507f1f77bcf86cd799439011"
	return nil
}

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, listingerrors.ErrNotFound
}

func (m *mockListingRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Listing, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return map[string]*model.Listing{}, nil
}

func (m *mockListingRepository) Search(ctx context.Context, f model.ListingFilter, limit int, offset int64) ([]*model.Listing, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, f, limit, offset)
	}
	return []*model.Listing{}, nil
}

func (m *mockListingRepository) CountSearch(ctx context.Context, f model.ListingFilter) (int64, error) {
	if m.countSearchFunc != nil {
		return m.countSearchFunc(ctx, f)
	}
	return 0, nil
}

func (m *mockListingRepository) Update(ctx context.Context, id string, l *model.Listing) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, l)
	}
	return nil
}

func (m *mockListingRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockListingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockListingRepository) DistinctTypes(ctx context.Context) ([]string, error) {
	if m.distinctTypesFunc != nil {
		return m.distinctTypesFunc(ctx)
	}
	return []string{}, nil
}

func (m *mockListingRepository) DistinctCities(ctx context.Context) ([]string, error) {
	if m.distinctCitiesFunc != nil {
		return m.distinctCitiesFunc(ctx)
	}
	return []string{}, nil
}

func (m *mockListingRepository) DistinctDistricts(ctx context.Context, city string) ([]string, error) {
	if m.distinctDistrictsFunc != nil {
		return m.distinctDistrictsFunc(ctx, city)
	}
	return []string{}, nil
}

func newTestService(repo *mockListingRepository) ListingService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
	cfg := &config.Config{
		Log:         log,
		ReadTimeout: 5 * time.Second,
	}
	return NewListingService(repo, validator.NewListingValidator(log), cfg)
}

func validListing() *model.Listing {
	return &model.Listing{
		Title:    "Apartamento Moderno no Centro",
		Type:     "apartment",
		Price:    2500,
		Bedrooms: 2,
		Address: model.Address{
			Street:     "Rua das Flores",
			Number:     "123",
			District:   "Centro",
			City:       "São Paulo",
			State:      "SP",
			PostalCode: "01234-567",
		},
	}
}

func TestCreate_DefaultsStatus(t *testing.T) {
	var created *model.Listing
	repo := &mockListingRepository{
		createFunc: func(ctx context.Context, l *model.Listing) error {
			l.ID = "507f1f77bcf86cd799439011"
			created = l
			return nil
		},
	}
	svc := newTestService(repo)

	listing := validListing()
	if err := svc.Create(context.Background(), listing); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if listing.Status != model.ListingStatusAvailable {
		t.Errorf("expected default status available, got %q", listing.Status)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	createCalled := false
	repo := &mockListingRepository{
		createFunc: func(ctx context.Context, l *model.Listing) error {
			createCalled = true
			return nil
		},
	}
	svc := newTestService(repo)

	listing := validListing()
	listing.Price = 0

	err := svc.Create(context.Background(), listing)
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeValidation || appErr.HTTPStatus != 400 {
		t.Errorf("expected 400 VALIDATION_ERROR, got %d %s", appErr.HTTPStatus, appErr.Code)
	}
	if createCalled {
		t.Error("repository Create must not run when validation fails")
	}
}

func TestSearch_PaginationOffset(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockListingRepository{
		searchFunc: func(ctx context.Context, f model.ListingFilter, limit int, offset int64) ([]*model.Listing, error) {
			gotLimit = limit
			gotOffset = offset
			return []*model.Listing{validListing()}, nil
		},
		countSearchFunc: func(ctx context.Context, f model.ListingFilter) (int64, error) {
			return 25, nil
		},
	}
	svc := newTestService(repo)

	listings, total, err := svc.Search(context.Background(), model.ListingFilter{}, 3, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Errorf("expected limit 10 offset 20, got limit %d offset %d", gotLimit, gotOffset)
	}
	if total != 25 {
		t.Errorf("expected total 25, got %d", total)
	}
	if len(listings) != 1 {
		t.Errorf("expected 1 listing, got %d", len(listings))
	}
}

func TestSearch_NormalizesFilter(t *testing.T) {
	var gotFilter model.ListingFilter
	repo := &mockListingRepository{
		searchFunc: func(ctx context.Context, f model.ListingFilter, limit int, offset int64) ([]*model.Listing, error) {
			gotFilter = f
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, _, err := svc.Search(context.Background(), model.ListingFilter{
		Search: "  centro  ",
		Type:   " Apartment ",
	}, 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotFilter.Search != "centro" {
		t.Errorf("expected trimmed search term, got %q", gotFilter.Search)
	}
	if gotFilter.Type != "apartment" {
		t.Errorf("expected lowercased type, got %q", gotFilter.Type)
	}
}

func TestUpdate_MergesOnlySuppliedFields(t *testing.T) {
	existing := validListing()
	existing.ID = "507f1f77bcf86cd799439011"
	existing.Status = model.ListingStatusAvailable

	var persisted *model.Listing
	repo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			copied := *existing
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, id string, l *model.Listing) error {
			persisted = l
			return nil
		},
	}
	svc := newTestService(repo)

	newPrice := 2800.0
	newStatus := model.ListingStatusRented
	updated, err := svc.Update(context.Background(), existing.ID, &model.ListingUpdate{
		Price:  &newPrice,
		Status: &newStatus,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Price != 2800 {
		t.Errorf("expected price 2800, got %v", updated.Price)
	}
	if updated.Status != model.ListingStatusRented {
		t.Errorf("expected status rented, got %s", updated.Status)
	}
	if updated.Title != existing.Title {
		t.Errorf("untouched title must survive, got %q", updated.Title)
	}
	if updated.Address.City != existing.Address.City {
		t.Errorf("untouched address must survive, got %q", updated.Address.City)
	}
	if persisted == nil || persisted.Price != 2800 {
		t.Error("expected merged listing to be persisted")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockListingRepository{})

	newPrice := 2800.0
	_, err := svc.Update(context.Background(), "507f1f77bcf86cd799439011", &model.ListingUpdate{Price: &newPrice})
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.HTTPStatus != 404 {
		t.Errorf("expected status 404, got %d", appErr.HTTPStatus)
	}
}

func TestGetByID_InvalidID(t *testing.T) {
	repo := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			return nil, listingerrors.ErrInvalidID
		},
	}
	svc := newTestService(repo)

	_, err := svc.GetByID(context.Background(), "garbage")
	if err == nil {
		t.Fatal("expected error")
	}
	if appErr := apperrors.AsAppError(err); appErr.HTTPStatus != 400 {
		t.Errorf("expected status 400, got %d", appErr.HTTPStatus)
	}
}

func TestDistinctValues(t *testing.T) {
	var gotCity string
	repo := &mockListingRepository{
		distinctTypesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"apartment", "house"}, nil
		},
		distinctDistrictsFunc: func(ctx context.Context, city string) ([]string, error) {
			gotCity = city
			return []string{"Centro", "Moema"}, nil
		},
	}
	svc := newTestService(repo)

	types, err := svc.Types(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) != 2 {
		t.Errorf("expected 2 types, got %v", types)
	}

	districts, err := svc.Districts(context.Background(), "  são paulo ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(districts) != 2 {
		t.Errorf("expected 2 districts, got %v", districts)
	}
	if gotCity != "São Paulo" && gotCity != "são paulo" {
		t.Errorf("expected normalized city, got %q", gotCity)
	}
}
