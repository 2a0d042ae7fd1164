package models

import (
	"testing"

	"farmcloud/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferDiscount(t *testing.T) {
	original := dec("750")
	offer := Offer{Price: dec("650"), OriginalPrice: &original}

	assert.True(t, offer.IsOnSale())
	assert.Equal(t, int64(13), offer.DiscountPercentage())
}

func TestOfferNotOnSale(t *testing.T) {
	lower := dec("500")
	tests := []struct {
		name  string
		offer Offer
	}{
		{"no original price", Offer{Price: dec("650")}},
		{"original below price", Offer{Price: dec("650"), OriginalPrice: &lower}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.offer.IsOnSale())
			assert.Zero(t, tt.offer.DiscountPercentage())
		})
	}
}

func TestOfferDiscountRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		price, original string
		want            int64
	}{
		{"875", "1000", 12},
		{"7", "8", 12},
		{"101", "200", 50},
		{"865", "1000", 14},
		{"650", "750", 13},
	}
	for _, tt := range tests {
		original := dec(tt.original)
		offer := Offer{Price: dec(tt.price), OriginalPrice: &original}
		assert.Equal(t, tt.want, offer.DiscountPercentage(), "%s off %s", tt.price, tt.original)
	}
}

func TestOfferValidateSlug(t *testing.T) {
	offer := Offer{Name: "Whole goat", Slug: "whole goat!", OfferType: OfferWhole, Price: dec("900")}
	verr, ok := apperrors.AsValidation(offer.Validate())
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "slug")

	offer.Slug = "whole-goat"
	assert.NoError(t, offer.Validate())
}

func TestBreedWeightRange(t *testing.T) {
	breed := Breed{Name: "Najdi", AnimalType: AnimalSheep, TypicalWeightMin: dec("60"), TypicalWeightMax: dec("40")}
	verr, ok := apperrors.AsValidation(breed.Validate())
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "typical_weight_max")
}

func TestAnimalDefaults(t *testing.T) {
	animal := Animal{}
	animal.ApplyDefaults()
	assert.Equal(t, AnimalAvailable, animal.Status)
	assert.Equal(t, DefaultAnimalLocation, animal.Location)
}
