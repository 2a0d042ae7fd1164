package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateOrderInput is an order as submitted by staff. Nil money fields are derived:
// Subtotal from the items, DeliveryFee from settings for home delivery.
type CreateOrderInput struct {
	CustomerID       uint
	Status           models.OrderStatus
	DeliveryMethod   models.DeliveryMethod
	DeliveryAddress  string
	DeliveryDate     *time.Time
	DeliveryTimeSlot string
	DeliveryNotes    string
	PaymentMethod    models.PaymentMethod
	Subtotal         *decimal.Decimal
	DeliveryFee      *decimal.Decimal
	DiscountAmount   decimal.Decimal
	AmountPaid       decimal.Decimal
	CustomerNotes    string
	InternalNotes    string
	Items            []ItemDraft
}

// ItemDraft is an order line before it is priced. Name and price default to the catalog entry.
type ItemDraft struct {
	Ref                    models.ItemRef
	ItemName               string
	ItemDescription        string
	Quantity               int
	UnitPrice              *decimal.Decimal
	ProcessingInstructions string
}

type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, opts repository.ListOptions) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error

	ConfirmOrder(ctx context.Context, id uint) (*models.Order, error)
	PrepareOrder(ctx context.Context, id uint) (*models.Order, error)
	CompleteOrder(ctx context.Context, id uint) (*models.Order, error)
	// RecalculateSubtotal sets the subtotal to the sum of the item totals.
	RecalculateSubtotal(ctx context.Context, id uint) (*models.Order, error)

	AddItem(ctx context.Context, orderID uint, draft ItemDraft) (*models.OrderItem, error)
	GetItem(ctx context.Context, id uint) (*models.OrderItem, error)
	ListItems(ctx context.Context, opts repository.ListOptions) ([]models.OrderItem, int64, error)
	UpdateItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error)
	DeleteItem(ctx context.Context, id uint) error
}

type OrderOption func(*orderService)

// WithClock replaces time.Now, which decides the order number day.
func WithClock(now func() time.Time) OrderOption {
	return func(s *orderService) {
		s.now = now
	}
}

type orderService struct {
	repos    *repository.Repositories
	settings SettingsService
	sequence SequenceAllocator
	notifier OrderNotifier
	log      *zap.Logger
	now      func() time.Time
}

func NewOrderService(repos *repository.Repositories, settings SettingsService, sequence SequenceAllocator, notifier OrderNotifier, log *zap.Logger, opts ...OrderOption) OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	if sequence == nil {
		sequence = DatabaseSequence{}
	}
	s := &orderService{
		repos:    repos,
		settings: settings,
		sequence: sequence,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	day := models.OrderDay(s.now(), settings.Location())

	var orderID uint
	create := func() error {
		return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
			order, err := s.buildOrder(ctx, tx, input, settings)
			if err != nil {
				return err
			}

			seq, err := s.sequence.Next(ctx, tx, day)
			if err != nil {
				return err
			}
			order.OrderNumber = models.FormatOrderNumber(day, seq)
			order.Recalculate()

			items := order.Items
			order.Items = nil
			if err := tx.Orders.Create(ctx, order); err != nil {
				return err
			}
			for i := range items {
				items[i].OrderID = order.ID
				if err := tx.OrderItems.Create(ctx, &items[i]); err != nil {
					return fmt.Errorf("items[%d]: %w", i, err)
				}
			}
			if err := tx.Customers.TouchLastOrderDate(ctx, order.CustomerID, order.CreatedAt); err != nil {
				return err
			}
			orderID = order.ID
			return nil
		})
	}

	err = create()
	if errors.Is(err, apperrors.ErrDuplicateOrderNumber) {
		s.log.Warn("order number collision, retrying", zap.String("day", day), zap.Error(err))
		err = create()
	}
	if err != nil {
		return nil, err
	}

	order, err := s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	s.log.Info("order created",
		zap.String("order_number", order.OrderNumber),
		zap.Uint("customer_id", order.CustomerID),
		zap.String("total_amount", order.TotalAmount.String()))

	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, order, settings)
	}
	return order, nil
}

// buildOrder validates the input and prices every line against the catalog.
func (s *orderService) buildOrder(ctx context.Context, tx *repository.Repositories, input CreateOrderInput, settings *models.Settings) (*models.Order, error) {
	order := &models.Order{
		CustomerID:       input.CustomerID,
		Status:           input.Status,
		DeliveryMethod:   input.DeliveryMethod,
		DeliveryAddress:  input.DeliveryAddress,
		DeliveryDate:     input.DeliveryDate,
		DeliveryTimeSlot: input.DeliveryTimeSlot,
		DeliveryNotes:    input.DeliveryNotes,
		PaymentMethod:    input.PaymentMethod,
		DiscountAmount:   input.DiscountAmount,
		AmountPaid:       input.AmountPaid,
		CustomerNotes:    input.CustomerNotes,
		InternalNotes:    input.InternalNotes,
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	}

	verr := &apperrors.ValidationError{}
	items := make([]models.OrderItem, 0, len(input.Items))
	for i, draft := range input.Items {
		item, err := s.resolveItem(ctx, tx, draft)
		if err != nil {
			var ref *apperrors.ReferenceError
			if errors.As(err, &ref) {
				return nil, apperrors.MissingReference(fmt.Sprintf("items[%d].%s", i, ref.Field))
			}
			if itemErr, ok := apperrors.AsValidation(err); ok {
				verr.Merge(fmt.Sprintf("items[%d].", i), itemErr)
				continue
			}
			return nil, err
		}
		items = append(items, *item)
	}
	order.Items = items

	switch {
	case input.Subtotal != nil:
		order.Subtotal = *input.Subtotal
	default:
		order.Subtotal = order.ItemsSubtotal()
	}
	switch {
	case input.DeliveryFee != nil:
		order.DeliveryFee = *input.DeliveryFee
	case order.DeliveryMethod == models.DeliveryHomeDelivery:
		order.DeliveryFee = settings.DeliveryFee
	default:
		order.DeliveryFee = decimal.Zero
	}

	if err := order.Validate(); err != nil {
		orderErr, _ := apperrors.AsValidation(err)
		verr.Merge("", orderErr)
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if err := s.checkCustomer(ctx, tx, order.CustomerID); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) checkCustomer(ctx context.Context, tx *repository.Repositories, id uint) error {
	if _, err := tx.Customers.GetByID(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.MissingReference("customer_id")
		}
		return err
	}
	return nil
}

// resolveItem turns a draft into a priced, validated item without persisting it.
func (s *orderService) resolveItem(ctx context.Context, tx *repository.Repositories, draft ItemDraft) (*models.OrderItem, error) {
	item := &models.OrderItem{
		ItemName:               draft.ItemName,
		ItemDescription:        draft.ItemDescription,
		Quantity:               draft.Quantity,
		ProcessingInstructions: draft.ProcessingInstructions,
	}
	item.SetRef(draft.Ref)

	var catalogPrice *decimal.Decimal
	switch draft.Ref.Kind {
	case models.ItemAnimal:
		animal, err := tx.Animals.GetByID(ctx, draft.Ref.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.MissingReference("animal")
			}
			return nil, err
		}
		if item.ItemName == "" {
			item.ItemName = animalItemName(animal)
		}
		catalogPrice = &animal.Price
	case models.ItemOffer:
		offer, err := tx.Offers.GetByID(ctx, draft.Ref.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.MissingReference("offer")
			}
			return nil, err
		}
		if item.ItemName == "" {
			item.ItemName = offer.Name
		}
		if item.ItemDescription == "" {
			item.ItemDescription = offer.Details
		}
		catalogPrice = &offer.Price
	}

	switch {
	case draft.UnitPrice != nil:
		item.UnitPrice = *draft.UnitPrice
	case catalogPrice != nil:
		item.UnitPrice = *catalogPrice
	default:
		return nil, apperrors.NewValidationError("unit_price", "is required for items without an animal or offer")
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}
	item.Recalculate()
	return item, nil
}

func animalItemName(animal *models.Animal) string {
	if animal.Breed != nil {
		return fmt.Sprintf("%s %s (%s)", animal.Breed.Name, animal.AnimalType, animal.TagNumber)
	}
	return fmt.Sprintf("%s (%s)", animal.AnimalType, animal.TagNumber)
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.repos.Orders.GetByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, opts repository.ListOptions) ([]models.Order, int64, error) {
	return s.repos.Orders.List(ctx, opts)
}

// UpdateOrder saves staff edits. The order number, creation time and the
// confirmation/completion timestamps are owned by the system and kept.
func (s *orderService) UpdateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.Orders.GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		order.OrderNumber = existing.OrderNumber
		order.CreatedAt = existing.CreatedAt
		order.ConfirmedAt = existing.ConfirmedAt
		order.CompletedAt = existing.CompletedAt
		order.Customer, order.Items, order.Delivery = nil, nil, nil

		if err := order.Validate(); err != nil {
			return err
		}
		if order.CustomerID != existing.CustomerID {
			if err := s.checkCustomer(ctx, tx, order.CustomerID); err != nil {
				return err
			}
		}
		order.Recalculate()
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Orders.GetByID(ctx, order.ID)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.repos.Orders.Delete(ctx, id)
}

// transition applies a staff action to an order and re-saves it.
func (s *orderService) transition(ctx context.Context, id uint, apply func(tx *repository.Repositories, order *models.Order) error) (*models.Order, error) {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := apply(tx, order); err != nil {
			return err
		}
		order.Customer, order.Delivery = nil, nil
		order.Recalculate()
		return tx.Orders.Update(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return s.repos.Orders.GetByID(ctx, id)
}

func (s *orderService) ConfirmOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, func(_ *repository.Repositories, order *models.Order) error {
		now := s.now().UTC()
		order.Status = models.OrderConfirmed
		order.ConfirmedAt = &now
		return nil
	})
}

func (s *orderService) PrepareOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, func(_ *repository.Repositories, order *models.Order) error {
		order.Status = models.OrderPreparing
		return nil
	})
}

func (s *orderService) CompleteOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, func(tx *repository.Repositories, order *models.Order) error {
		now := s.now().UTC()
		order.Status = models.OrderCompleted
		order.CompletedAt = &now
		return tx.Customers.TouchLastOrderDate(ctx, order.CustomerID, now)
	})
}

func (s *orderService) RecalculateSubtotal(ctx context.Context, id uint) (*models.Order, error) {
	return s.transition(ctx, id, func(_ *repository.Repositories, order *models.Order) error {
		order.Subtotal = order.ItemsSubtotal()
		return order.Validate()
	})
}

func (s *orderService) AddItem(ctx context.Context, orderID uint, draft ItemDraft) (*models.OrderItem, error) {
	var item *models.OrderItem
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if _, err := tx.Orders.GetByID(ctx, orderID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.MissingReference("order")
			}
			return err
		}
		resolved, err := s.resolveItem(ctx, tx, draft)
		if err != nil {
			return err
		}
		resolved.OrderID = orderID
		if err := tx.OrderItems.Create(ctx, resolved); err != nil {
			return err
		}
		item = resolved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *orderService) GetItem(ctx context.Context, id uint) (*models.OrderItem, error) {
	return s.repos.OrderItems.GetByID(ctx, id)
}

func (s *orderService) ListItems(ctx context.Context, opts repository.ListOptions) ([]models.OrderItem, int64, error) {
	return s.repos.OrderItems.List(ctx, opts)
}

// UpdateItem re-validates references and recomputes the line total.
func (s *orderService) UpdateItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		existing, err := tx.OrderItems.GetByID(ctx, item.ID)
		if err != nil {
			return err
		}
		item.CreatedAt = existing.CreatedAt
		item.Animal, item.Offer = nil, nil

		if err := item.Validate(); err != nil {
			return err
		}
		if item.OrderID != existing.OrderID {
			if _, err := tx.Orders.GetByID(ctx, item.OrderID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.MissingReference("order")
				}
				return err
			}
		}
		if err := s.checkItemRef(ctx, tx, item.Ref()); err != nil {
			return err
		}
		item.Recalculate()
		return tx.OrderItems.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return s.repos.OrderItems.GetByID(ctx, item.ID)
}

func (s *orderService) checkItemRef(ctx context.Context, tx *repository.Repositories, ref models.ItemRef) error {
	var err error
	switch ref.Kind {
	case models.ItemAnimal:
		_, err = tx.Animals.GetByID(ctx, ref.ID)
	case models.ItemOffer:
		_, err = tx.Offers.GetByID(ctx, ref.ID)
	default:
		return nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.MissingReference(string(ref.Kind))
	}
	return err
}

func (s *orderService) DeleteItem(ctx context.Context, id uint) error {
	return s.repos.OrderItems.Delete(ctx, id)
}
