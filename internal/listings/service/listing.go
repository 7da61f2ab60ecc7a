package service

import (
	"context"
	"errors"
	"sync"

	listingerrors "moradia/internal/listings/errors"
	"moradia/internal/listings/repository"
	"moradia/internal/listings/validator"
	"moradia/pkg/config"
	apperrors "moradia/pkg/errors"
	"moradia/pkg/model"
	"moradia/pkg/sanitizer"
)

type ListingService interface {
	Create(ctx context.Context, listing *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	Search(ctx context.Context, filter model.ListingFilter, page, perPage int) ([]*model.Listing, int64, error)
	Update(ctx context.Context, id string, updates *model.ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, id string) error
	Types(ctx context.Context) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
	Districts(ctx context.Context, city string) ([]string, error)
}

type listingService struct {
	repo      repository.ListingRepository
	validator *validator.ListingValidator
	cfg       *config.Config
}

func NewListingService(
	repo repository.ListingRepository,
	validator *validator.ListingValidator,
	cfg *config.Config,
) ListingService {
	return &listingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *listingService) Create(ctx context.Context, listing *model.Listing) error {
	s.sanitize(listing)
	s.applyDefaults(listing)

	if err := s.validator.Validate(listing); err != nil {
		s.cfg.Log.Warn("Listing validation failed", "title", listing.Title, "error", err)
		return validationError(err)
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		s.cfg.Log.Error("Failed to create listing", "title", listing.Title, "error", err)
		return apperrors.Internal("Failed to create listing", err)
	}

	s.cfg.Log.Info("Listing created successfully",
		"id", listing.ID,
		"title", listing.Title,
		"city", listing.Address.City,
	)
	return nil
}

func (s *listingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	return listing, nil
}

func (s *listingService) Search(ctx context.Context, filter model.ListingFilter, page, perPage int) ([]*model.Listing, int64, error) {
	filter.Search = sanitizer.TrimAndNormalize(filter.Search)
	filter.Type = sanitizer.NormalizeLabel(filter.Type)
	filter.District = sanitizer.TrimAndNormalize(filter.District)
	filter.City = sanitizer.TrimAndNormalize(filter.City)

	offset := int64(page-1) * int64(perPage)

	var count int64
	var listings []*model.Listing
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountSearch(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count listings", "error", err)
			errCount = apperrors.Internal("Failed to count listings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		listings, err = s.repo.Search(ctx, filter, perPage, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search listings",
				"page", page,
				"per_page", perPage,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search listings", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return listings, count, nil
}

func (s *listingService) Update(ctx context.Context, id string, updates *model.ListingUpdate) (*model.Listing, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, id)
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Listing update validation failed", "id", id, "error", err)
		return nil, validationError(err)
	}

	merged := mergeListingUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Listing validation failed after merge", "id", id, "error", err)
		return nil, validationError(err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, listingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", id)
		}
		s.cfg.Log.Error("Failed to update listing", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update listing", err)
	}

	s.cfg.Log.Info("Listing updated successfully", "id", id)
	return merged, nil
}

func (s *listingService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Listing ID cannot be empty")
	}

	// Appointments referencing this listing are kept. They keep working by
	// id; their listing summary resolves to nothing from now on.
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoError(err, id)
	}

	s.cfg.Log.Info("Listing deleted successfully", "id", id)
	return nil
}

func (s *listingService) Types(ctx context.Context) ([]string, error) {
	types, err := s.repo.DistinctTypes(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list listing types", "error", err)
		return nil, apperrors.Internal("Failed to list listing types", err)
	}
	return types, nil
}

func (s *listingService) Cities(ctx context.Context) ([]string, error) {
	cities, err := s.repo.DistinctCities(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list cities", "error", err)
		return nil, apperrors.Internal("Failed to list cities", err)
	}
	return cities, nil
}

func (s *listingService) Districts(ctx context.Context, city string) ([]string, error) {
	districts, err := s.repo.DistinctDistricts(ctx, sanitizer.NormalizeCity(city))
	if err != nil {
		s.cfg.Log.Error("Failed to list districts", "city", city, "error", err)
		return nil, apperrors.Internal("Failed to list districts", err)
	}
	return districts, nil
}

// --- Helpers ---

func (s *listingService) sanitize(l *model.Listing) {
	l.Title = sanitizer.TrimAndNormalize(l.Title)
	l.Description = sanitizer.TrimAndNormalize(l.Description)
	l.Type = sanitizer.NormalizeLabel(l.Type)
	l.Address.Street = sanitizer.TrimAndNormalize(l.Address.Street)
	l.Address.Number = sanitizer.TrimAndNormalize(l.Address.Number)
	l.Address.District = sanitizer.TrimAndNormalize(l.Address.District)
	l.Address.City = sanitizer.NormalizeCity(l.Address.City)
	l.Address.State = sanitizer.TrimAndNormalize(l.Address.State)
	l.Address.PostalCode = sanitizer.TrimAndNormalize(l.Address.PostalCode)
}

func (s *listingService) applyDefaults(l *model.Listing) {
	if l.Status == "" {
		l.Status = model.ListingStatusAvailable
	}
}

func mergeListingUpdates(existing *model.Listing, updates *model.ListingUpdate) *model.Listing {
	merged := *existing

	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Type != nil {
		merged.Type = *updates.Type
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Bedrooms != nil {
		merged.Bedrooms = *updates.Bedrooms
	}
	if updates.Bathrooms != nil {
		merged.Bathrooms = *updates.Bathrooms
	}
	if updates.Area != nil {
		merged.Area = *updates.Area
	}
	if updates.Address != nil {
		if updates.Address.Street != nil {
			merged.Address.Street = *updates.Address.Street
		}
		if updates.Address.Number != nil {
			merged.Address.Number = *updates.Address.Number
		}
		if updates.Address.District != nil {
			merged.Address.District = *updates.Address.District
		}
		if updates.Address.City != nil {
			merged.Address.City = *updates.Address.City
		}
		if updates.Address.State != nil {
			merged.Address.State = *updates.Address.State
		}
		if updates.Address.PostalCode != nil {
			merged.Address.PostalCode = *updates.Address.PostalCode
		}
	}
	if updates.Latitude != nil {
		merged.Latitude = updates.Latitude
	}
	if updates.Longitude != nil {
		merged.Longitude = updates.Longitude
	}
	if updates.MainImage != nil {
		merged.MainImage = *updates.MainImage
	}
	if updates.AdditionalImages != nil {
		merged.AdditionalImages = *updates.AdditionalImages
	}
	if updates.Status != nil {
		merged.Status = *updates.Status
	}
	if updates.Featured != nil {
		merged.Featured = *updates.Featured
	}

	return &merged
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
	if errors.Is(err, listingerrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Listing", id)
	}
	if errors.Is(err, listingerrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid listing ID format")
	}
	return apperrors.Internal("Failed to access listing", err)
}
