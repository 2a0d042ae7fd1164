package models

import (
	"net/mail"
	"time"
	_ "time/tzdata"

	"farmcloud/internal/apperrors"

	"github.com/shopspring/decimal"
)

// SettingsID is the primary key of the only settings row.
const SettingsID uint = 1

type Settings struct {
	ID                 uint            `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Currency           string          `json:"currency" gorm:"size:3;not null"`
	Timezone           string          `json:"timezone" gorm:"size:50;not null"`
	Language           string          `json:"language" gorm:"size:2;not null"`
	BusinessName       string          `json:"business_name" gorm:"size:255;not null"`
	Email              string          `json:"email" gorm:"size:254;not null"`
	Phone              string          `json:"phone" gorm:"size:20;not null"`
	Address            string          `json:"address" gorm:"type:text;not null"`
	EmailNotifications bool            `json:"email_notifications"`
	SMSNotifications   bool            `json:"sms_notifications" gorm:"column:sms_notifications"`
	OrderAlerts        bool            `json:"order_alerts"`
	LowStockAlerts     bool            `json:"low_stock_alerts"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2);not null"`
	TaxRate            decimal.Decimal `json:"tax_rate" gorm:"type:decimal(5,2);not null"`
	MinOrderAmount     decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(10,2);not null"`
	UpdatedAt          time.Time       `json:"updated_at"`
	UpdatedBy          *string         `json:"updated_by" gorm:"size:100"`
}

func (Settings) TableName() string {
	return "settings"
}

func DefaultSettings() Settings {
	return Settings{
		ID:                 SettingsID,
		Currency:           "AED",
		Timezone:           "Asia/Dubai",
		Language:           "en",
		BusinessName:       "FarmCloud Livestock",
		Email:              "admin@farmcloud.ae",
		Phone:              "+971 50 123 4567",
		Address:            "Dubai, UAE",
		EmailNotifications: true,
		SMSNotifications:   false,
		OrderAlerts:        true,
		LowStockAlerts:     true,
		DeliveryFee:        decimal.RequireFromString("50.00"),
		TaxRate:            decimal.RequireFromString("5.00"),
		MinOrderAmount:     decimal.RequireFromString("100.00"),
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (s *Settings) Location() *time.Location {
	if s == nil || s.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s *Settings) Validate() error {
	verr := &apperrors.ValidationError{}
	if len(s.Currency) != 3 {
		verr.Add("currency", "must be a 3 letter code")
	}
	if _, err := time.LoadLocation(s.Timezone); s.Timezone == "" || err != nil {
		verr.Add("timezone", "is not a known timezone")
	}
	if len(s.Language) != 2 {
		verr.Add("language", "must be a 2 letter code")
	}
	if s.BusinessName == "" {
		verr.Add("business_name", "is required")
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		verr.Add("email", "must be a valid email address")
	}
	if s.DeliveryFee.IsNegative() {
		verr.Add("delivery_fee", "must not be negative")
	}
	if s.TaxRate.IsNegative() {
		verr.Add("tax_rate", "must not be negative")
	}
	if s.MinOrderAmount.IsNegative() {
		verr.Add("min_order_amount", "must not be negative")
	}
	return verr.Err()
}
