package services

import (
	"context"
	"fmt"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	ListCustomers(ctx context.Context, opts repository.ListOptions) ([]models.Customer, int64, error)
	UpdateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	DeleteCustomer(ctx context.Context, id uint) error
	Metrics(ctx context.Context, id uint) (models.CustomerMetrics, error)
	MetricsFor(ctx context.Context, ids []uint) (map[uint]models.CustomerMetrics, error)
	SetVIP(ctx context.Context, id uint, vip bool) (*models.Customer, error)
}

type customerService struct {
	repos *repository.Repositories
}

func NewCustomerService(repos *repository.Repositories) CustomerService {
	return &customerService{repos: repos}
}

func (s *customerService) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	customer.ApplyDefaults()
	customer.LastOrderDate = nil
	if err := customer.Validate(); err != nil {
		return err
	}
	return s.repos.Customers.Create(ctx, customer)
}

func (s *customerService) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	return s.repos.Customers.GetByID(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, opts repository.ListOptions) ([]models.Customer, int64, error) {
	return s.repos.Customers.List(ctx, opts)
}

// UpdateCustomer saves editable fields; creation time and last order date are kept.
func (s *customerService) UpdateCustomer(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	existing, err := s.repos.Customers.GetByID(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	customer.CreatedAt = existing.CreatedAt
	customer.LastOrderDate = existing.LastOrderDate
	customer.ApplyDefaults()
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if err := s.repos.Customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return s.repos.Customers.GetByID(ctx, customer.ID)
}

func (s *customerService) DeleteCustomer(ctx context.Context, id uint) error {
	if _, err := s.repos.Customers.GetByID(ctx, id); err != nil {
		return err
	}
	orders, err := s.repos.Orders.CountByCustomer(ctx, id)
	if err != nil {
		return err
	}
	if orders > 0 {
		return fmt.Errorf("%w: customer has %d orders", apperrors.ErrReferenced, orders)
	}
	return s.repos.Customers.Delete(ctx, id)
}

func (s *customerService) Metrics(ctx context.Context, id uint) (models.CustomerMetrics, error) {
	return s.repos.Customers.Metrics(ctx, id)
}

func (s *customerService) MetricsFor(ctx context.Context, ids []uint) (map[uint]models.CustomerMetrics, error) {
	return s.repos.Customers.MetricsFor(ctx, ids)
}

func (s *customerService) SetVIP(ctx context.Context, id uint, vip bool) (*models.Customer, error) {
	if err := s.repos.Customers.SetVIP(ctx, id, vip); err != nil {
		return nil, err
	}
	return s.repos.Customers.GetByID(ctx, id)
}
