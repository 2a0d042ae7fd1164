package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one connection or transaction.
type Repositories struct {
	db *gorm.DB

	Customers  CustomerRepository
	Breeds     BreedRepository
	Animals    AnimalRepository
	Offers     OfferRepository
	Orders     OrderRepository
	OrderItems OrderItemRepository
	Deliveries DeliveryRepository
	Settings   SettingsRepository
	Users      UserRepository
	Sequences  SequenceRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Customers:  NewCustomerRepository(db),
		Breeds:     NewBreedRepository(db),
		Animals:    NewAnimalRepository(db),
		Offers:     NewOfferRepository(db),
		Orders:     NewOrderRepository(db),
		OrderItems: NewOrderItemRepository(db),
		Deliveries: NewDeliveryRepository(db),
		Settings:   NewSettingsRepository(db),
		Users:      NewUserRepository(db),
		Sequences:  NewSequenceRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database transaction.
// Nested calls use savepoints.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping checks the underlying connection.
func (r *Repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
