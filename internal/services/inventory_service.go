package services

import (
	"context"
	"errors"
	"fmt"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"
)

type InventoryService interface {
	CreateBreed(ctx context.Context, breed *models.Breed) error
	GetBreed(ctx context.Context, id uint) (*models.Breed, error)
	ListBreeds(ctx context.Context, opts repository.ListOptions) ([]models.Breed, int64, error)
	UpdateBreed(ctx context.Context, breed *models.Breed) (*models.Breed, error)
	DeleteBreed(ctx context.Context, id uint) error

	CreateAnimal(ctx context.Context, animal *models.Animal) (*models.Animal, error)
	GetAnimal(ctx context.Context, id uint) (*models.Animal, error)
	ListAnimals(ctx context.Context, opts repository.ListOptions) ([]models.Animal, int64, error)
	UpdateAnimal(ctx context.Context, animal *models.Animal) (*models.Animal, error)
	DeleteAnimal(ctx context.Context, id uint) error
	SetAnimalStatus(ctx context.Context, id uint, status models.AnimalStatus) (*models.Animal, error)

	CreateOffer(ctx context.Context, offer *models.Offer) error
	GetOffer(ctx context.Context, id uint) (*models.Offer, error)
	ListOffers(ctx context.Context, opts repository.ListOptions) ([]models.Offer, int64, error)
	UpdateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	DeleteOffer(ctx context.Context, id uint) error
}

type inventoryService struct {
	repos *repository.Repositories
}

func NewInventoryService(repos *repository.Repositories) InventoryService {
	return &inventoryService{repos: repos}
}

func (s *inventoryService) CreateBreed(ctx context.Context, breed *models.Breed) error {
	if err := breed.Validate(); err != nil {
		return err
	}
	return s.repos.Breeds.Create(ctx, breed)
}

func (s *inventoryService) GetBreed(ctx context.Context, id uint) (*models.Breed, error) {
	return s.repos.Breeds.GetByID(ctx, id)
}

func (s *inventoryService) ListBreeds(ctx context.Context, opts repository.ListOptions) ([]models.Breed, int64, error) {
	return s.repos.Breeds.List(ctx, opts)
}

func (s *inventoryService) UpdateBreed(ctx context.Context, breed *models.Breed) (*models.Breed, error) {
	if _, err := s.repos.Breeds.GetByID(ctx, breed.ID); err != nil {
		return nil, err
	}
	if err := breed.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Breeds.Update(ctx, breed); err != nil {
		return nil, err
	}
	return breed, nil
}

func (s *inventoryService) DeleteBreed(ctx context.Context, id uint) error {
	if _, err := s.repos.Breeds.GetByID(ctx, id); err != nil {
		return err
	}
	animals, err := s.repos.Animals.CountByBreed(ctx, id)
	if err != nil {
		return err
	}
	if animals > 0 {
		return fmt.Errorf("%w: breed has %d animals", apperrors.ErrReferenced, animals)
	}
	return s.repos.Breeds.Delete(ctx, id)
}

func (s *inventoryService) checkBreed(ctx context.Context, id uint) error {
	if _, err := s.repos.Breeds.GetByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.MissingReference("breed")
		}
		return err
	}
	return nil
}

func (s *inventoryService) CreateAnimal(ctx context.Context, animal *models.Animal) (*models.Animal, error) {
	animal.ApplyDefaults()
	if err := animal.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkBreed(ctx, animal.BreedID); err != nil {
		return nil, err
	}
	if err := s.repos.Animals.Create(ctx, animal); err != nil {
		return nil, err
	}
	return s.repos.Animals.GetByID(ctx, animal.ID)
}

func (s *inventoryService) GetAnimal(ctx context.Context, id uint) (*models.Animal, error) {
	return s.repos.Animals.GetByID(ctx, id)
}

func (s *inventoryService) ListAnimals(ctx context.Context, opts repository.ListOptions) ([]models.Animal, int64, error) {
	return s.repos.Animals.List(ctx, opts)
}

func (s *inventoryService) UpdateAnimal(ctx context.Context, animal *models.Animal) (*models.Animal, error) {
	existing, err := s.repos.Animals.GetByID(ctx, animal.ID)
	if err != nil {
		return nil, err
	}
	animal.CreatedAt = existing.CreatedAt
	animal.Breed = nil
	animal.ApplyDefaults()
	if err := animal.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkBreed(ctx, animal.BreedID); err != nil {
		return nil, err
	}
	if err := s.repos.Animals.Update(ctx, animal); err != nil {
		return nil, err
	}
	return s.repos.Animals.GetByID(ctx, animal.ID)
}

func (s *inventoryService) DeleteAnimal(ctx context.Context, id uint) error {
	if _, err := s.repos.Animals.GetByID(ctx, id); err != nil {
		return err
	}
	items, err := s.repos.OrderItems.CountByAnimal(ctx, id)
	if err != nil {
		return err
	}
	if items > 0 {
		return fmt.Errorf("%w: animal is on %d order items", apperrors.ErrReferenced, items)
	}
	return s.repos.Animals.Delete(ctx, id)
}

// SetAnimalStatus backs the mark-available and mark-sold actions.
func (s *inventoryService) SetAnimalStatus(ctx context.Context, id uint, status models.AnimalStatus) (*models.Animal, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "is not a valid choice")
	}
	if err := s.repos.Animals.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.repos.Animals.GetByID(ctx, id)
}

func (s *inventoryService) CreateOffer(ctx context.Context, offer *models.Offer) error {
	if err := offer.Validate(); err != nil {
		return err
	}
	return s.repos.Offers.Create(ctx, offer)
}

func (s *inventoryService) GetOffer(ctx context.Context, id uint) (*models.Offer, error) {
	return s.repos.Offers.GetByID(ctx, id)
}

func (s *inventoryService) ListOffers(ctx context.Context, opts repository.ListOptions) ([]models.Offer, int64, error) {
	return s.repos.Offers.List(ctx, opts)
}

func (s *inventoryService) UpdateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	existing, err := s.repos.Offers.GetByID(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	offer.CreatedAt = existing.CreatedAt
	if err := offer.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Offers.Update(ctx, offer); err != nil {
		return nil, err
	}
	return s.repos.Offers.GetByID(ctx, offer.ID)
}

func (s *inventoryService) DeleteOffer(ctx context.Context, id uint) error {
	if _, err := s.repos.Offers.GetByID(ctx, id); err != nil {
		return err
	}
	items, err := s.repos.OrderItems.CountByOffer(ctx, id)
	if err != nil {
		return err
	}
	if items > 0 {
		return fmt.Errorf("%w: offer is on %d order items", apperrors.ErrReferenced, items)
	}
	return s.repos.Offers.Delete(ctx, id)
}
