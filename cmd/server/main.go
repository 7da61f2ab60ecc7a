package main

import (
	"context"

	appointmenthandler "moradia/internal/appointments/handler"
	appointmentrepo "moradia/internal/appointments/repository"
	appointmentservice "moradia/internal/appointments/service"
	appointmentvalidator "moradia/internal/appointments/validator"
	healthhandler "moradia/internal/health/handler"
	listinghandler "moradia/internal/listings/handler"
	listingrepo "moradia/internal/listings/repository"
	listingservice "moradia/internal/listings/service"
	listingvalidator "moradia/internal/listings/validator"
	"moradia/internal/seed"
	"moradia/pkg/app"
	"moradia/pkg/config"
	"moradia/pkg/events"
)

func main() {
	cfg := config.Load("moradia-server")
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	ctx := context.Background()

	listingRepository := listingrepo.NewMongoListingRepository(cfg)
	appointmentRepository := appointmentrepo.NewMongoAppointmentRepository(cfg)
	slotLockRepository := appointmentrepo.NewSlotLockRepository(cfg)

	if err := appointmentRepository.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to ensure appointment indexes", "error", err)
	}
	if err := slotLockRepository.EnsureIndexes(ctx); err != nil {
		cfg.Log.Fatal("Failed to ensure slot lock indexes", "error", err)
	}

	if err := seed.NewSeeder(listingRepository, cfg.Log).Run(ctx); err != nil {
		cfg.Log.Fatal("Failed to seed listings", "error", err)
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, "moradia-server", cfg.Log)
	defer publisher.Close()

	listingSvc := listingservice.NewListingService(
		listingRepository,
		listingvalidator.NewListingValidator(cfg.Log),
		cfg,
	)
	appointmentSvc := appointmentservice.NewAppointmentService(
		appointmentRepository,
		slotLockRepository,
		listingRepository,
		appointmentvalidator.NewAppointmentValidator(cfg.Log),
		publisher,
		cfg,
	)

	application := app.New(cfg,
		healthhandler.NewHealthHandler(cfg),
		listinghandler.NewListingHandler(listingSvc, cfg.Log),
		appointmenthandler.NewAppointmentHandler(appointmentSvc, cfg.Log),
	)
	application.Run()
}
