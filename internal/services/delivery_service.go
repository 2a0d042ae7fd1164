package services

import (
	"context"
	"errors"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"
)

type DeliveryService interface {
	CreateDelivery(ctx context.Context, delivery *models.Delivery) error
	GetDelivery(ctx context.Context, id uint) (*models.Delivery, error)
	ListDeliveries(ctx context.Context, opts repository.ListOptions) ([]models.Delivery, int64, error)
	UpdateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error)
	DeleteDelivery(ctx context.Context, id uint) error
}

type deliveryService struct {
	repos *repository.Repositories
}

func NewDeliveryService(repos *repository.Repositories) DeliveryService {
	return &deliveryService{repos: repos}
}

func (s *deliveryService) checkOrder(ctx context.Context, orderID uint) error {
	if _, err := s.repos.Orders.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.MissingReference("order")
		}
		return err
	}
	return nil
}

// CreateDelivery attaches a delivery record to an order; an order has at most one.
func (s *deliveryService) CreateDelivery(ctx context.Context, delivery *models.Delivery) error {
	if err := delivery.Validate(); err != nil {
		return err
	}
	if err := s.checkOrder(ctx, delivery.OrderID); err != nil {
		return err
	}
	return s.repos.Deliveries.Create(ctx, delivery)
}

func (s *deliveryService) GetDelivery(ctx context.Context, id uint) (*models.Delivery, error) {
	return s.repos.Deliveries.GetByID(ctx, id)
}

func (s *deliveryService) ListDeliveries(ctx context.Context, opts repository.ListOptions) ([]models.Delivery, int64, error) {
	return s.repos.Deliveries.List(ctx, opts)
}

func (s *deliveryService) UpdateDelivery(ctx context.Context, delivery *models.Delivery) (*models.Delivery, error) {
	existing, err := s.repos.Deliveries.GetByID(ctx, delivery.ID)
	if err != nil {
		return nil, err
	}
	delivery.CreatedAt = existing.CreatedAt
	if err := delivery.Validate(); err != nil {
		return nil, err
	}
	if delivery.OrderID != existing.OrderID {
		if err := s.checkOrder(ctx, delivery.OrderID); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Deliveries.Update(ctx, delivery); err != nil {
		return nil, err
	}
	return s.repos.Deliveries.GetByID(ctx, delivery.ID)
}

func (s *deliveryService) DeleteDelivery(ctx context.Context, id uint) error {
	return s.repos.Deliveries.Delete(ctx, id)
}
