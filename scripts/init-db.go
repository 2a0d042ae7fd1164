// Command init-db migrates the database and seeds a demo catalog.
package main

import (
	"context"
	"errors"
	"time"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/config"
	"farmcloud/internal/database"
	"farmcloud/internal/logger"
	"farmcloud/internal/migrations"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"
	"farmcloud/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedAnimal struct {
	tag    string
	breed  string
	gender models.Gender
	weight string
	age    int
	price  string
}

var seedBreeds = []models.Breed{
	{Name: "Najdi", AnimalType: models.AnimalSheep, Description: "Large desert sheep prized for its meat.",
		TypicalWeightMin: decimal.RequireFromString("45"), TypicalWeightMax: decimal.RequireFromString("80")},
	{Name: "Awassi", AnimalType: models.AnimalSheep, Description: "Fat-tailed sheep common across the region.",
		TypicalWeightMin: decimal.RequireFromString("40"), TypicalWeightMax: decimal.RequireFromString("70")},
	{Name: "Jamunapari", AnimalType: models.AnimalGoat, Description: "Tall goat breed with long ears.",
		TypicalWeightMin: decimal.RequireFromString("35"), TypicalWeightMax: decimal.RequireFromString("60")},
}

var seedAnimals = []seedAnimal{
	{tag: "SH-0001", breed: "Najdi", gender: models.GenderMale, weight: "62.5", age: 14, price: "1450"},
	{tag: "SH-0002", breed: "Najdi", gender: models.GenderFemale, weight: "51.0", age: 12, price: "1200"},
	{tag: "SH-0003", breed: "Awassi", gender: models.GenderMale, weight: "48.0", age: 10, price: "1100"},
	{tag: "GT-0001", breed: "Jamunapari", gender: models.GenderMale, weight: "42.0", age: 11, price: "950"},
}

var seedOffers = []models.Offer{
	{Name: "Whole Najdi sheep", Slug: "whole-najdi", OfferType: models.OfferWhole, AnimalType: models.AnimalSheep,
		Details: "Slaughtered, cleaned and cut to order.", Price: decimal.RequireFromString("1500"), IsActive: true, IsFeatured: true, DisplayOrder: 1},
	{Name: "Half sheep", Slug: "half-sheep", OfferType: models.OfferHalf, AnimalType: models.AnimalSheep,
		Details: "Half carcass, packed in 1kg bags.", Price: decimal.RequireFromString("700"), IsActive: true, DisplayOrder: 2},
	{Name: "Family BBQ package", Slug: "bbq-package", OfferType: models.OfferPackage,
		Details: "Chops, kebab mince and ribs for 8 people.", Price: decimal.RequireFromString("450"), IsActive: true, DisplayOrder: 3},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogLevel, "console")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	db, err := database.Initialize(cfg.DatabaseURL, database.Options{Debug: cfg.DBDebug, Logger: log})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := migrations.RunMigrations(ctx, db, cfg, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	repos := repository.New(db)
	if err := seedCatalog(ctx, services.NewInventoryService(repos), log); err != nil {
		log.Fatal("failed to seed catalog", zap.Error(err))
	}
	log.Info("database initialization completed")
}

// seedCatalog inserts the demo breeds, animals and offers, skipping rows that already exist.
func seedCatalog(ctx context.Context, inventory services.InventoryService, log *zap.Logger) error {
	breedIDs := make(map[string]uint, len(seedBreeds))
	existing, _, err := inventory.ListBreeds(ctx, repository.ListOptions{PageSize: repository.MaxPageSize})
	if err != nil {
		return err
	}
	for _, breed := range existing {
		breedIDs[breed.Name] = breed.ID
	}
	for _, breed := range seedBreeds {
		if _, ok := breedIDs[breed.Name]; ok {
			continue
		}
		breed := breed
		if err := inventory.CreateBreed(ctx, &breed); err != nil {
			return err
		}
		breedIDs[breed.Name] = breed.ID
		log.Info("breed created", zap.String("name", breed.Name))
	}

	acquired := time.Now().UTC().AddDate(0, -3, 0)
	for _, seed := range seedAnimals {
		breedID := breedIDs[seed.breed]
		animalType := models.AnimalSheep
		for _, breed := range seedBreeds {
			if breed.Name == seed.breed {
				animalType = breed.AnimalType
			}
		}
		_, err := inventory.CreateAnimal(ctx, &models.Animal{
			TagNumber:    seed.tag,
			AnimalType:   animalType,
			BreedID:      breedID,
			Weight:       decimal.RequireFromString(seed.weight),
			AgeMonths:    seed.age,
			Gender:       seed.gender,
			Price:        decimal.RequireFromString(seed.price),
			DateAcquired: acquired,
		})
		if skip(err) {
			continue
		}
		if err != nil {
			return err
		}
		log.Info("animal created", zap.String("tag_number", seed.tag))
	}

	for _, offer := range seedOffers {
		offer := offer
		err := inventory.CreateOffer(ctx, &offer)
		if skip(err) {
			continue
		}
		if err != nil {
			return err
		}
		log.Info("offer created", zap.String("slug", offer.Slug))
	}
	return nil
}

// skip reports rows that were seeded by an earlier run.
func skip(err error) bool {
	return errors.Is(err, apperrors.ErrUniqueViolation)
}
