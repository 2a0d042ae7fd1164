package repository

import (
	"context"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BreedRepository interface {
	Create(ctx context.Context, breed *models.Breed) error
	GetByID(ctx context.Context, id uint) (*models.Breed, error)
	List(ctx context.Context, opts ListOptions) ([]models.Breed, int64, error)
	Update(ctx context.Context, breed *models.Breed) error
	Delete(ctx context.Context, id uint) error
}

type AnimalRepository interface {
	Create(ctx context.Context, animal *models.Animal) error
	GetByID(ctx context.Context, id uint) (*models.Animal, error)
	List(ctx context.Context, opts ListOptions) ([]models.Animal, int64, error)
	Update(ctx context.Context, animal *models.Animal) error
	Delete(ctx context.Context, id uint) error
	SetStatus(ctx context.Context, id uint, status models.AnimalStatus) error
	CountByBreed(ctx context.Context, breedID uint) (int64, error)
}

type OfferRepository interface {
	Create(ctx context.Context, offer *models.Offer) error
	GetByID(ctx context.Context, id uint) (*models.Offer, error)
	List(ctx context.Context, opts ListOptions) ([]models.Offer, int64, error)
	Update(ctx context.Context, offer *models.Offer) error
	Delete(ctx context.Context, id uint) error
}

var breedList = listSpec{
	filters: map[string]filterField{
		"animal_type": {column: "animal_type"},
	},
	searchColumns: []string{"name"},
	orderable: map[string]string{
		"id":          "id",
		"name":        "name",
		"animal_type": "animal_type",
	},
	defaultOrder: "animal_type, name, id",
}

var animalList = listSpec{
	filters: map[string]filterField{
		"status":      {column: "status"},
		"animal_type": {column: "animal_type"},
		"breed":       {column: "breed_id", kind: filterInt},
		"gender":      {column: "gender"},
	},
	searchColumns: []string{"tag_number", "color", "location"},
	orderable: map[string]string{
		"id":            "id",
		"created_at":    "created_at",
		"price":         "price",
		"weight":        "weight",
		"age_months":    "age_months",
		"date_acquired": "date_acquired",
	},
	defaultOrder: "created_at DESC, id DESC",
}

var offerList = listSpec{
	filters: map[string]filterField{
		"offer_type":  {column: "offer_type"},
		"animal_type": {column: "animal_type"},
		"is_active":   {column: "is_active", kind: filterBool},
		"is_featured": {column: "is_featured", kind: filterBool},
	},
	searchColumns: []string{"name", "description"},
	orderable: map[string]string{
		"id":            "id",
		"price":         "price",
		"display_order": "display_order",
		"created_at":    "created_at",
	},
	defaultOrder: "display_order, created_at DESC, id",
}

func withBreed(db *gorm.DB) *gorm.DB {
	return db.Preload("Breed")
}

type breedRepository struct {
	db *gorm.DB
}

func NewBreedRepository(db *gorm.DB) BreedRepository {
	return &breedRepository{db: db}
}

func (r *breedRepository) Create(ctx context.Context, breed *models.Breed) error {
	return translate(r.db.WithContext(ctx).Create(breed).Error)
}

func (r *breedRepository) GetByID(ctx context.Context, id uint) (*models.Breed, error) {
	var breed models.Breed
	if err := r.db.WithContext(ctx).First(&breed, id).Error; err != nil {
		return nil, translate(err)
	}
	return &breed, nil
}

func (r *breedRepository) List(ctx context.Context, opts ListOptions) ([]models.Breed, int64, error) {
	return list[models.Breed](ctx, r.db, breedList, opts)
}

func (r *breedRepository) Update(ctx context.Context, breed *models.Breed) error {
	return translate(r.db.WithContext(ctx).Save(breed).Error)
}

func (r *breedRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.Breed{}, id))
}

type animalRepository struct {
	db *gorm.DB
}

func NewAnimalRepository(db *gorm.DB) AnimalRepository {
	return &animalRepository{db: db}
}

func (r *animalRepository) Create(ctx context.Context, animal *models.Animal) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(animal).Error)
}

func (r *animalRepository) GetByID(ctx context.Context, id uint) (*models.Animal, error) {
	var animal models.Animal
	if err := r.db.WithContext(ctx).Scopes(withBreed).First(&animal, id).Error; err != nil {
		return nil, translate(err)
	}
	return &animal, nil
}

func (r *animalRepository) List(ctx context.Context, opts ListOptions) ([]models.Animal, int64, error) {
	return list[models.Animal](ctx, r.db, animalList, opts, withBreed)
}

func (r *animalRepository) Update(ctx context.Context, animal *models.Animal) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Save(animal).Error)
}

func (r *animalRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.Animal{}, id))
}

func (r *animalRepository) SetStatus(ctx context.Context, id uint, status models.AnimalStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Animal{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *animalRepository) CountByBreed(ctx context.Context, breedID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Animal{}).Where("breed_id = ?", breedID).Count(&count).Error
	return count, translate(err)
}

type offerRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) OfferRepository {
	return &offerRepository{db: db}
}

func (r *offerRepository) Create(ctx context.Context, offer *models.Offer) error {
	return translate(r.db.WithContext(ctx).Create(offer).Error)
}

func (r *offerRepository) GetByID(ctx context.Context, id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, id).Error; err != nil {
		return nil, translate(err)
	}
	return &offer, nil
}

func (r *offerRepository) List(ctx context.Context, opts ListOptions) ([]models.Offer, int64, error) {
	return list[models.Offer](ctx, r.db, offerList, opts)
}

func (r *offerRepository) Update(ctx context.Context, offer *models.Offer) error {
	return translate(r.db.WithContext(ctx).Save(offer).Error)
}

func (r *offerRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.Offer{}, id))
}
