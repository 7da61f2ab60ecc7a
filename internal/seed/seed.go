package seed

import (
	"context"
	"fmt"

	"moradia/internal/listings/repository"
	"moradia/pkg/logger"
	"moradia/pkg/model"
)

// Seeder populates an empty database with a starter listing catalog so the
// API is usable out of the box. Seeding is idempotent: a non-empty listings
// collection is left untouched.
type Seeder struct {
	repo repository.ListingRepository
	log  *logger.Logger
}

func NewSeeder(repo repository.ListingRepository, log *logger.Logger) *Seeder {
	return &Seeder{repo: repo, log: log}
}

func (s *Seeder) Run(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to check listing count: %w", err)
	}
	if count > 0 {
		s.log.Info("Skipping seed, listings already present", "count", count)
		return nil
	}

	catalog := starterCatalog()
	for _, listing := range catalog {
		if err := s.repo.Create(ctx, listing); err != nil {
			return fmt.Errorf("failed to seed listing %q: %w", listing.Title, err)
		}
	}

	s.log.Info("Seeded starter listings", "count", len(catalog))
	return nil
}

func coords(lat, lng float64) (*float64, *float64) {
	return &lat, &lng
}

func starterCatalog() []*model.Listing {
	lat, lng := coords(-23.5505, -46.6333)

	return []*model.Listing{
		{
			Title:       "Apartamento Moderno no Centro",
			Description: "Apartamento completamente reformado com acabamentos modernos, próximo ao metrô.",
			Type:        "apartment",
			Price:       2500,
			Bedrooms:    2,
			Bathrooms:   2,
			Area:        80,
			Address: model.Address{
				Street:     "Rua das Flores",
				Number:     "123",
				District:   "Centro",
				City:       "São Paulo",
				State:      "SP",
				PostalCode: "01234-567",
			},
			Latitude:  lat,
			Longitude: lng,
			Featured:  true,
			Status:    model.ListingStatusAvailable,
		},
		{
			Title:       "Casa com Jardim na Zona Sul",
			Description: "Casa térrea com amplo jardim, ideal para famílias. Garagem para 2 carros.",
			Type:        "house",
			Price:       4200,
			Bedrooms:    3,
			Bathrooms:   2,
			Area:        150,
			Address: model.Address{
				Street:     "Rua dos Jardins",
				Number:     "456",
				District:   "Vila Madalena",
				City:       "São Paulo",
				State:      "SP",
				PostalCode: "05678-901",
			},
			Latitude:  lat,
			Longitude: lng,
			Featured:  false,
			Status:    model.ListingStatusAvailable,
		},
		{
			Title:       "Loft Industrial Reformado",
			Description: "Loft com pé direito alto, estilo industrial, totalmente mobiliado.",
			Type:        "loft",
			Price:       3800,
			Bedrooms:    1,
			Bathrooms:   1,
			Area:        90,
			Address: model.Address{
				Street:     "Rua da Indústria",
				Number:     "789",
				District:   "Bela Vista",
				City:       "São Paulo",
				State:      "SP",
				PostalCode: "01234-567",
			},
			Latitude:  lat,
			Longitude: lng,
			Featured:  true,
			Status:    model.ListingStatusAvailable,
		},
		{
			Title:       "Studio Compacto e Funcional",
			Description: "Studio otimizado com móveis planejados, ideal para jovens profissionais.",
			Type:        "studio",
			Price:       1800,
			Bedrooms:    1,
			Bathrooms:   1,
			Area:        35,
			Address: model.Address{
				Street:     "Rua Compacta",
				Number:     "321",
				District:   "Liberdade",
				City:       "São Paulo",
				State:      "SP",
				PostalCode: "01234-567",
			},
			Latitude:  lat,
			Longitude: lng,
			Featured:  false,
			Status:    model.ListingStatusAvailable,
		},
		{
			Title:       "Cobertura com Vista Panorâmica",
			Description: "Cobertura duplex com terraço, churrasqueira e vista para a cidade.",
			Type:        "apartment",
			Price:       8500,
			Bedrooms:    4,
			Bathrooms:   3,
			Area:        200,
			Address: model.Address{
				Street:     "Avenida Panorâmica",
				Number:     "1000",
				District:   "Moema",
				City:       "São Paulo",
				State:      "SP",
				PostalCode: "04567-890",
			},
			Latitude:  lat,
			Longitude: lng,
			Featured:  true,
			Status:    model.ListingStatusAvailable,
		},
		{
			Title:       "Casa Térrea com Quintal",
			Description: "Casa com quintal amplo, ideal para pets. Próxima a escolas e comércio.",
			Type:        "house",
			Price:       3200,
			Bedrooms:    3,
			Bathrooms:   2,
			Area:        120,
			Address: model.Address{
				Street:     "Rua do Quintal",
				Number:     "654",
				District:   "Vila Prudente",
				City:       "São Paulo",
				State:      "SP",
				PostalCode: "03456-789",
			},
			Latitude:  lat,
			Longitude: lng,
			Featured:  false,
			Status:    model.ListingStatusAvailable,
		},
	}
}
