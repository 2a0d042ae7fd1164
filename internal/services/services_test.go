package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"farmcloud/internal/database"
	"farmcloud/internal/models"
	"farmcloud/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// 08:00 UTC is already noon in Dubai, so the order day is the same in both zones.
var testNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

const testDay = "20240315"

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := database.Initialize("sqlite://"+filepath.Join(t.TempDir(), "test.db"), database.Options{})
	require.NoError(t, err)
	return repository.New(db)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func seedCustomer(t *testing.T, repos *repository.Repositories, phone string) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		FullName:     "Customer " + phone,
		PhoneNumber:  phone,
		AddressLine1: "Street 1",
		City:         "Dubai",
		Emirate:      models.EmirateDubai,
		IsActive:     true,
	}
	require.NoError(t, NewCustomerService(repos).CreateCustomer(context.Background(), customer))
	return customer
}

func seedBreed(t *testing.T, repos *repository.Repositories) *models.Breed {
	t.Helper()
	breed := &models.Breed{
		Name:             "Najdi",
		AnimalType:       models.AnimalSheep,
		TypicalWeightMin: dec("40"),
		TypicalWeightMax: dec("70"),
	}
	require.NoError(t, NewInventoryService(repos).CreateBreed(context.Background(), breed))
	return breed
}

func seedAnimal(t *testing.T, repos *repository.Repositories, breedID uint, tag, price string) *models.Animal {
	t.Helper()
	animal, err := NewInventoryService(repos).CreateAnimal(context.Background(), &models.Animal{
		TagNumber:    tag,
		AnimalType:   models.AnimalSheep,
		BreedID:      breedID,
		Weight:       dec("55"),
		AgeMonths:    10,
		Gender:       models.GenderMale,
		Price:        dec(price),
		DateAcquired: testNow.AddDate(0, -2, 0),
	})
	require.NoError(t, err)
	return animal
}

func seedOffer(t *testing.T, repos *repository.Repositories, slug, price string) *models.Offer {
	t.Helper()
	offer := &models.Offer{
		Name:      "Half sheep " + slug,
		Slug:      slug,
		OfferType: models.OfferHalf,
		Details:   "Cut and packed",
		Price:     dec(price),
		IsActive:  true,
	}
	require.NoError(t, NewInventoryService(repos).CreateOffer(context.Background(), offer))
	return offer
}

func newSettings(repos *repository.Repositories) SettingsService {
	return NewSettingsService(repos.Settings, nil, time.Minute, nil)
}

// recordingNotifier captures order alerts.
type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
}

func (n *recordingNotifier) OrderCreated(_ context.Context, order *models.Order, _ *models.Settings) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.OrderNumber)
}

func (n *recordingNotifier) sent() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.orders...)
}
