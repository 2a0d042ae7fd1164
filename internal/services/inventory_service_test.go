package services

import (
	"context"
	"testing"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewCustomerService(repos)

	customer := seedCustomer(t, repos, "0501234567")
	assert.Equal(t, models.CustomerIndividual, customer.CustomerType)

	metrics, err := svc.Metrics(ctx, customer.ID)
	require.NoError(t, err)
	assert.Zero(t, metrics.TotalOrdersCount)
	assert.True(t, metrics.TotalSpent.IsZero())

	vip, err := svc.SetVIP(ctx, customer.ID, true)
	require.NoError(t, err)
	assert.True(t, vip.IsVIP)

	bad := *vip
	bad.PhoneNumber = "12345"
	_, err = svc.UpdateCustomer(ctx, &bad)
	verr, ok := apperrors.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "phone_number")

	orders, _ := newTestOrderService(t, repos)
	_, err = orders.CreateOrder(ctx, CreateOrderInput{
		CustomerID:     customer.ID,
		DeliveryMethod: models.DeliveryFarmPickup,
		Subtotal:       decPtr("10"),
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteCustomer(ctx, customer.ID), apperrors.ErrReferenced)
	assert.ErrorIs(t, svc.DeleteCustomer(ctx, 9999), apperrors.ErrNotFound)
}

func TestInventoryReferences(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewInventoryService(repos)

	_, err := svc.CreateAnimal(ctx, &models.Animal{
		TagNumber:    "G-1",
		AnimalType:   models.AnimalGoat,
		BreedID:      77,
		Gender:       models.GenderFemale,
		Price:        dec("900"),
		DateAcquired: testNow,
	})
	var ref *apperrors.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "breed", ref.Field)

	breed := seedBreed(t, repos)
	animal := seedAnimal(t, repos, breed.ID, "SH-9", "1000")
	assert.Equal(t, models.AnimalAvailable, animal.Status)
	assert.Equal(t, models.DefaultAnimalLocation, animal.Location)
	require.NotNil(t, animal.Breed)

	sold, err := svc.SetAnimalStatus(ctx, animal.ID, models.AnimalSold)
	require.NoError(t, err)
	assert.Equal(t, models.AnimalSold, sold.Status)
	_, err = svc.SetAnimalStatus(ctx, animal.ID, "EATEN")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.ErrorIs(t, svc.DeleteBreed(ctx, breed.ID), apperrors.ErrReferenced)

	offer := seedOffer(t, repos, "whole-goat", "650")
	customer := seedCustomer(t, repos, "0507654321")
	orders, _ := newTestOrderService(t, repos)
	_, err = orders.CreateOrder(ctx, CreateOrderInput{
		CustomerID:     customer.ID,
		DeliveryMethod: models.DeliveryFarmPickup,
		Items: []ItemDraft{
			{Ref: models.ItemRef{Kind: models.ItemAnimal, ID: animal.ID}, Quantity: 1},
			{Ref: models.ItemRef{Kind: models.ItemOffer, ID: offer.ID}, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAnimal(ctx, animal.ID), apperrors.ErrReferenced)
	assert.ErrorIs(t, svc.DeleteOffer(ctx, offer.ID), apperrors.ErrReferenced)

	spare := seedOffer(t, repos, "spare", "10")
	require.NoError(t, svc.DeleteOffer(ctx, spare.ID))
}

func TestDeliveryService(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewDeliveryService(repos)

	err := svc.CreateDelivery(ctx, &models.Delivery{OrderID: 404, DriverName: "Saeed"})
	var ref *apperrors.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "order", ref.Field)

	customer := seedCustomer(t, repos, "0501234567")
	orders, _ := newTestOrderService(t, repos)
	order, err := orders.CreateOrder(ctx, CreateOrderInput{
		CustomerID:     customer.ID,
		DeliveryMethod: models.DeliveryHomeDelivery,
		Subtotal:       decPtr("300"),
	})
	require.NoError(t, err)

	delivery := &models.Delivery{OrderID: order.ID, DriverName: "Saeed", DriverPhone: "0501112222"}
	require.NoError(t, svc.CreateDelivery(ctx, delivery))

	err = svc.CreateDelivery(ctx, &models.Delivery{OrderID: order.ID})
	assert.ErrorIs(t, err, apperrors.ErrUniqueViolation)

	dispatched := testNow
	delivery.DispatchedAt = &dispatched
	updated, err := svc.UpdateDelivery(ctx, delivery)
	require.NoError(t, err)
	require.NotNil(t, updated.DispatchedAt)

	withDelivery, err := orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, withDelivery.Delivery)
	assert.Equal(t, "Saeed", withDelivery.Delivery.DriverName)

	require.NoError(t, orders.DeleteOrder(ctx, order.ID))
	_, err = svc.GetDelivery(ctx, delivery.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
