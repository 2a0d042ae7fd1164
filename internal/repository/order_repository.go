package repository

import (
	"context"
	"errors"
	"fmt"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	List(ctx context.Context, opts ListOptions) ([]models.Order, int64, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id uint) error
	MaxSequence(ctx context.Context, day string) (int, error)
	CountByCustomer(ctx context.Context, customerID uint) (int64, error)
}

var orderList = listSpec{
	filters: map[string]filterField{
		"status":          {column: "status"},
		"payment_status":  {column: "payment_status"},
		"delivery_method": {column: "delivery_method"},
		"customer":        {column: "customer_id", kind: filterInt},
	},
	searchColumns: []string{"order_number"},
	searchScope: func(db *gorm.DB, pattern string) *gorm.DB {
		return db.Or("customer_id IN (?)",
			db.Session(&gorm.Session{NewDB: true}).
				Model(&models.Customer{}).
				Select("id").
				Where("LOWER(full_name) LIKE ? OR LOWER(phone_number) LIKE ?", pattern, pattern))
	},
	orderable: map[string]string{
		"id":            "id",
		"created_at":    "created_at",
		"delivery_date": "delivery_date",
		"total_amount":  "total_amount",
		"order_number":  "order_number",
	},
	defaultOrder: "created_at DESC, id DESC",
}

func withOrderDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Delivery")
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create inserts the order row only; items are written by OrderItemRepository.
// A clash on order_number is reported as ErrDuplicateOrderNumber.
func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateOrderNumber, order.OrderNumber)
	}
	return translate(err)
}

func (r *orderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Scopes(withOrderDetails).First(&order, id).Error; err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, opts ListOptions) ([]models.Order, int64, error) {
	return list[models.Order](ctx, r.db, orderList, opts, withOrderDetails)
}

// Update writes every column except the immutable order number and creation time.
func (r *orderRepository) Update(ctx context.Context, order *models.Order) error {
	result := r.db.WithContext(ctx).
		Model(order).
		Select("*").
		Omit("id", "order_number", "created_at", clause.Associations).
		Updates(order)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes the order together with its items and delivery.
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return translateDelete(err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.Delivery{}).Error; err != nil {
			return translateDelete(err)
		}
		return deleted(tx.Delete(&models.Order{}, id))
	})
}

// MaxSequence returns the highest numeric suffix among the day's order numbers, 0 if none.
func (r *orderRepository) MaxSequence(ctx context.Context, day string) (int, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number LIKE ?", models.OrderDayPrefix(day)+"%").
		Pluck("order_number", &numbers).Error
	if err != nil {
		return 0, translate(err)
	}

	highest := 0
	for _, number := range numbers {
		if seq, ok := models.ParseOrderSequence(number, day); ok && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}

func (r *orderRepository) CountByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("customer_id = ?", customerID).Count(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, translate(err)
	}
	return count, nil
}
