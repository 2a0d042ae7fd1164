package repository

import (
	"context"

	"farmcloud/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemRepository interface {
	Create(ctx context.Context, item *models.OrderItem) error
	GetByID(ctx context.Context, id uint) (*models.OrderItem, error)
	List(ctx context.Context, opts ListOptions) ([]models.OrderItem, int64, error)
	ListByOrder(ctx context.Context, orderID uint) ([]models.OrderItem, error)
	Update(ctx context.Context, item *models.OrderItem) error
	Delete(ctx context.Context, id uint) error
	CountByAnimal(ctx context.Context, animalID uint) (int64, error)
	CountByOffer(ctx context.Context, offerID uint) (int64, error)
}

var orderItemList = listSpec{
	filters: map[string]filterField{
		"order":  {column: "order_id", kind: filterInt},
		"animal": {column: "animal_id", kind: filterInt},
		"offer":  {column: "offer_id", kind: filterInt},
	},
	searchColumns: []string{"item_name"},
	orderable: map[string]string{
		"id":         "id",
		"created_at": "created_at",
		"quantity":   "quantity",
		"unit_price": "unit_price",
	},
	defaultOrder: "id",
}

type orderItemRepository struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepository{db: db}
}

func (r *orderItemRepository) Create(ctx context.Context, item *models.OrderItem) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error)
}

func (r *orderItemRepository) GetByID(ctx context.Context, id uint) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (r *orderItemRepository) List(ctx context.Context, opts ListOptions) ([]models.OrderItem, int64, error) {
	return list[models.OrderItem](ctx, r.db, orderItemList, opts)
}

func (r *orderItemRepository) ListByOrder(ctx context.Context, orderID uint) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&items).Error
	return items, translate(err)
}

func (r *orderItemRepository) Update(ctx context.Context, item *models.OrderItem) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations, "created_at").Save(item).Error)
}

func (r *orderItemRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.OrderItem{}, id))
}

func (r *orderItemRepository) CountByAnimal(ctx context.Context, animalID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("animal_id = ?", animalID).Count(&count).Error
	return count, translate(err)
}

func (r *orderItemRepository) CountByOffer(ctx context.Context, offerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderItem{}).Where("offer_id = ?", offerID).Count(&count).Error
	return count, translate(err)
}
