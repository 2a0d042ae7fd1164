package models

import (
	"testing"

	"farmcloud/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidPhoneNumber(t *testing.T) {
	for _, phone := range []string{"+971501234567", "971501234567", "0501234567"} {
		assert.True(t, ValidPhoneNumber(phone), phone)
	}
	for _, phone := range []string{"501234567", "+97150123456", "05012345678", "+44 20 7946 0958", ""} {
		assert.False(t, ValidPhoneNumber(phone), phone)
	}
}

func TestCustomerValidate(t *testing.T) {
	customer := Customer{
		FullName:     "Ahmed Al Mansoori",
		PhoneNumber:  "0501234567",
		AddressLine1: "Villa 12, Street 4",
		City:         "Dubai",
		Emirate:      EmirateDubai,
	}
	customer.ApplyDefaults()
	require.NoError(t, customer.Validate())
	assert.Equal(t, CustomerIndividual, customer.CustomerType)
	assert.Equal(t, LanguageEnglish, customer.PreferredLanguage)

	customer.PhoneNumber = "12345"
	customer.Emirate = "DOHA"
	verr, ok := apperrors.AsValidation(customer.Validate())
	require.True(t, ok)
	assert.Equal(t, "Phone number must be in UAE format", verr.Fields["phone_number"])
	assert.Contains(t, verr.Fields, "emirate")
}

func TestContactNumberPrefersWhatsApp(t *testing.T) {
	customer := Customer{PhoneNumber: "0501234567"}
	assert.Equal(t, "0501234567", customer.ContactNumber())
	customer.WhatsAppNumber = "0559876543"
	assert.Equal(t, "0559876543", customer.ContactNumber())
}
