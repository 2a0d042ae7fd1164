package repository

import (
	"context"

	"farmcloud/internal/models"

	"gorm.io/gorm"
)

type DeliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	GetByID(ctx context.Context, id uint) (*models.Delivery, error)
	GetByOrderID(ctx context.Context, orderID uint) (*models.Delivery, error)
	List(ctx context.Context, opts ListOptions) ([]models.Delivery, int64, error)
	Update(ctx context.Context, delivery *models.Delivery) error
	Delete(ctx context.Context, id uint) error
}

var deliveryList = listSpec{
	filters: map[string]filterField{
		"order":       {column: "order_id", kind: filterInt},
		"driver_name": {column: "driver_name"},
	},
	searchColumns: []string{"driver_name", "driver_phone", "vehicle_info"},
	orderable: map[string]string{
		"id":            "id",
		"created_at":    "created_at",
		"dispatched_at": "dispatched_at",
		"delivered_at":  "delivered_at",
	},
	defaultOrder: "created_at DESC, id DESC",
}

type deliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	return translate(r.db.WithContext(ctx).Create(delivery).Error)
}

func (r *deliveryRepository) GetByID(ctx context.Context, id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, id).Error; err != nil {
		return nil, translate(err)
	}
	return &delivery, nil
}

func (r *deliveryRepository) GetByOrderID(ctx context.Context, orderID uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&delivery).Error; err != nil {
		return nil, translate(err)
	}
	return &delivery, nil
}

func (r *deliveryRepository) List(ctx context.Context, opts ListOptions) ([]models.Delivery, int64, error) {
	return list[models.Delivery](ctx, r.db, deliveryList, opts)
}

func (r *deliveryRepository) Update(ctx context.Context, delivery *models.Delivery) error {
	return translate(r.db.WithContext(ctx).Save(delivery).Error)
}

func (r *deliveryRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.Delivery{}, id))
}
