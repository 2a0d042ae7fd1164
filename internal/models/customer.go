package models

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"farmcloud/internal/apperrors"

	"github.com/shopspring/decimal"
)

// UAE mobile or landline, with or without the 971 country code.
var phonePattern = regexp.MustCompile(`^\+?971[0-9]{9}$|^0[0-9]{9}$`)

type Customer struct {
	ID                uint              `json:"id" gorm:"primaryKey"`
	FullName          string            `json:"full_name" gorm:"size:200;not null"`
	PhoneNumber       string            `json:"phone_number" gorm:"size:15;uniqueIndex;not null"`
	Email             string            `json:"email" gorm:"size:254;index"`
	AddressLine1      string            `json:"address_line1" gorm:"size:255;not null"`
	AddressLine2      string            `json:"address_line2" gorm:"size:255"`
	City              string            `json:"city" gorm:"size:100;not null"`
	Emirate           Emirate           `json:"emirate" gorm:"size:50;not null;index"`
	PostalCode        string            `json:"postal_code" gorm:"size:10"`
	CustomerType      CustomerType      `json:"customer_type" gorm:"size:20;default:'INDIVIDUAL'"`
	PreferredLanguage PreferredLanguage `json:"preferred_language" gorm:"size:10;default:'EN'"`
	WhatsAppNumber    string            `json:"whatsapp_number" gorm:"column:whatsapp_number;size:15"`
	Notes             string            `json:"notes" gorm:"type:text"`
	IsActive          bool              `json:"is_active" gorm:"index"`
	IsVIP             bool              `json:"is_vip" gorm:"column:is_vip;index"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	LastOrderDate     *time.Time        `json:"last_order_date" gorm:"index"`
}

// CustomerMetrics are derived from the order ledger and never stored.
type CustomerMetrics struct {
	TotalOrdersCount int64           `json:"total_orders_count"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}

type Emirate string

const (
	EmirateAbuDhabi     Emirate = "ABU_DHABI"
	EmirateDubai        Emirate = "DUBAI"
	EmirateSharjah      Emirate = "SHARJAH"
	EmirateAjman        Emirate = "AJMAN"
	EmirateUmmAlQuwain  Emirate = "UMM_AL_QUWAIN"
	EmirateRasAlKhaimah Emirate = "RAS_AL_KHAIMAH"
	EmirateFujairah     Emirate = "FUJAIRAH"
)

func (e Emirate) Valid() bool {
	switch e {
	case EmirateAbuDhabi, EmirateDubai, EmirateSharjah, EmirateAjman,
		EmirateUmmAlQuwain, EmirateRasAlKhaimah, EmirateFujairah:
		return true
	}
	return false
}

type CustomerType string

const (
	CustomerIndividual CustomerType = "INDIVIDUAL"
	CustomerBusiness   CustomerType = "BUSINESS"
)

type PreferredLanguage string

const (
	LanguageEnglish PreferredLanguage = "EN"
	LanguageArabic  PreferredLanguage = "AR"
)

// ValidPhoneNumber reports whether phone matches the UAE format.
func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ContactNumber is the number order alerts go to.
func (c *Customer) ContactNumber() string {
	if c.WhatsAppNumber != "" {
		return c.WhatsAppNumber
	}
	return c.PhoneNumber
}

func (c *Customer) ApplyDefaults() {
	if c.CustomerType == "" {
		c.CustomerType = CustomerIndividual
	}
	if c.PreferredLanguage == "" {
		c.PreferredLanguage = LanguageEnglish
	}
}

func (c *Customer) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(c.FullName) == "" {
		verr.Add("full_name", "is required")
	}
	if !ValidPhoneNumber(c.PhoneNumber) {
		verr.Add("phone_number", "Phone number must be in UAE format")
	}
	if c.WhatsAppNumber != "" && len(c.WhatsAppNumber) > 15 {
		verr.Add("whatsapp_number", "must be at most 15 characters")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			verr.Add("email", "must be a valid email address")
		}
	}
	if strings.TrimSpace(c.AddressLine1) == "" {
		verr.Add("address_line1", "is required")
	}
	if strings.TrimSpace(c.City) == "" {
		verr.Add("city", "is required")
	}
	if !c.Emirate.Valid() {
		verr.Add("emirate", "is not a valid choice")
	}
	switch c.CustomerType {
	case CustomerIndividual, CustomerBusiness:
	default:
		verr.Add("customer_type", "is not a valid choice")
	}
	switch c.PreferredLanguage {
	case LanguageEnglish, LanguageArabic:
	default:
		verr.Add("preferred_language", "is not a valid choice")
	}
	return verr.Err()
}
