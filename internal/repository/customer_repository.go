package repository

import (
	"context"
	"time"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uint) (*models.Customer, error)
	List(ctx context.Context, opts ListOptions) ([]models.Customer, int64, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uint) error
	Metrics(ctx context.Context, id uint) (models.CustomerMetrics, error)
	MetricsFor(ctx context.Context, ids []uint) (map[uint]models.CustomerMetrics, error)
	TouchLastOrderDate(ctx context.Context, id uint, at time.Time) error
	SetVIP(ctx context.Context, id uint, vip bool) error
}

var customerList = listSpec{
	filters: map[string]filterField{
		"emirate":       {column: "emirate"},
		"customer_type": {column: "customer_type"},
		"is_active":     {column: "is_active", kind: filterBool},
		"is_vip":        {column: "is_vip", kind: filterBool},
	},
	searchColumns: []string{"full_name", "phone_number", "email"},
	orderable: map[string]string{
		"id":              "id",
		"created_at":      "created_at",
		"full_name":       "full_name",
		"last_order_date": "last_order_date",
	},
	defaultOrder: "created_at DESC, id DESC",
}

type customerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *models.Customer) error {
	return translate(r.db.WithContext(ctx).Create(customer).Error)
}

func (r *customerRepository) GetByID(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translate(err)
	}
	return &customer, nil
}

func (r *customerRepository) List(ctx context.Context, opts ListOptions) ([]models.Customer, int64, error) {
	return list[models.Customer](ctx, r.db, customerList, opts)
}

func (r *customerRepository) Update(ctx context.Context, customer *models.Customer) error {
	return translate(r.db.WithContext(ctx).Save(customer).Error)
}

func (r *customerRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.Customer{}, id))
}

type customerMetricsRow struct {
	CustomerID       uint
	TotalOrdersCount int64
	TotalSpent       decimal.Decimal
}

// metricsQuery counts every order but only sums revenue statuses.
func (r *customerRepository) metricsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("customer_id, COUNT(*) AS total_orders_count, "+
			"COALESCE(SUM(CASE WHEN status IN ? THEN total_amount ELSE 0 END), 0) AS total_spent",
			models.RevenueStatuses).
		Group("customer_id")
}

func (r *customerRepository) Metrics(ctx context.Context, id uint) (models.CustomerMetrics, error) {
	metrics, err := r.MetricsFor(ctx, []uint{id})
	if err != nil {
		return models.CustomerMetrics{}, err
	}
	return metrics[id], nil
}

// MetricsFor returns metrics for every id; customers without orders get zero values.
func (r *customerRepository) MetricsFor(ctx context.Context, ids []uint) (map[uint]models.CustomerMetrics, error) {
	result := make(map[uint]models.CustomerMetrics, len(ids))
	for _, id := range ids {
		result[id] = models.CustomerMetrics{TotalSpent: decimal.Zero}
	}
	if len(ids) == 0 {
		return result, nil
	}

	var rows []customerMetricsRow
	if err := r.metricsQuery(ctx).Where("customer_id IN ?", ids).Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		result[row.CustomerID] = models.CustomerMetrics{
			TotalOrdersCount: row.TotalOrdersCount,
			TotalSpent:       row.TotalSpent,
		}
	}
	return result, nil
}

func (r *customerRepository) TouchLastOrderDate(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).UpdateColumn("last_order_date", at)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *customerRepository) SetVIP(ctx context.Context, id uint, vip bool) error {
	result := r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Update("is_vip", vip)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
