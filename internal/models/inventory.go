package models

import (
	"regexp"
	"strings"
	"time"

	"farmcloud/internal/apperrors"

	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

type AnimalType string

const (
	AnimalGoat  AnimalType = "GOAT"
	AnimalSheep AnimalType = "SHEEP"
)

func (t AnimalType) Valid() bool {
	return t == AnimalGoat || t == AnimalSheep
}

type AnimalStatus string

const (
	AnimalAvailable  AnimalStatus = "AVAILABLE"
	AnimalReserved   AnimalStatus = "RESERVED"
	AnimalSold       AnimalStatus = "SOLD"
	AnimalProcessing AnimalStatus = "PROCESSING"
)

func (s AnimalStatus) Valid() bool {
	switch s {
	case AnimalAvailable, AnimalReserved, AnimalSold, AnimalProcessing:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

type OfferType string

const (
	OfferWhole   OfferType = "WHOLE"
	OfferHalf    OfferType = "HALF"
	OfferQuarter OfferType = "QUARTER"
	OfferPackage OfferType = "PACKAGE"
	OfferCuts    OfferType = "CUTS"
)

func (t OfferType) Valid() bool {
	switch t {
	case OfferWhole, OfferHalf, OfferQuarter, OfferPackage, OfferCuts:
		return true
	}
	return false
}

const DefaultAnimalLocation = "Main Farm"

type Breed struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	Name             string          `json:"name" gorm:"size:100;not null"`
	AnimalType       AnimalType      `json:"animal_type" gorm:"size:10;not null;index"`
	Description      string          `json:"description" gorm:"type:text"`
	TypicalWeightMin decimal.Decimal `json:"typical_weight_min" gorm:"type:decimal(5,2);not null"`
	TypicalWeightMax decimal.Decimal `json:"typical_weight_max" gorm:"type:decimal(5,2);not null"`
}

func (b *Breed) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(b.Name) == "" {
		verr.Add("name", "is required")
	}
	if !b.AnimalType.Valid() {
		verr.Add("animal_type", "is not a valid choice")
	}
	if b.TypicalWeightMin.IsNegative() {
		verr.Add("typical_weight_min", "must not be negative")
	}
	if b.TypicalWeightMin.GreaterThan(b.TypicalWeightMax) {
		verr.Add("typical_weight_max", "must be greater than or equal to typical_weight_min")
	}
	return verr.Err()
}

type Animal struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	TagNumber    string          `json:"tag_number" gorm:"size:50;uniqueIndex;not null"`
	AnimalType   AnimalType      `json:"animal_type" gorm:"size:10;not null;index:idx_animal_status_type,priority:2"`
	BreedID      uint            `json:"breed" gorm:"not null;index"`
	Breed        *Breed          `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	Weight       decimal.Decimal `json:"weight" gorm:"type:decimal(6,2);not null"`
	AgeMonths    int             `json:"age_months" gorm:"not null"`
	Gender       Gender          `json:"gender" gorm:"size:10;not null"`
	Color        string          `json:"color" gorm:"size:50"`
	Status       AnimalStatus    `json:"status" gorm:"size:20;not null;index:idx_animal_status_type,priority:1"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	DateAcquired time.Time       `json:"date_acquired" gorm:"not null"`
	Location     string          `json:"location" gorm:"size:100"`
	HealthNotes  string          `json:"health_notes" gorm:"type:text"`
	Image        string          `json:"image" gorm:"size:255"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (a *Animal) ApplyDefaults() {
	if a.Status == "" {
		a.Status = AnimalAvailable
	}
	if a.Location == "" {
		a.Location = DefaultAnimalLocation
	}
}

func (a *Animal) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(a.TagNumber) == "" {
		verr.Add("tag_number", "is required")
	}
	if !a.AnimalType.Valid() {
		verr.Add("animal_type", "is not a valid choice")
	}
	if a.BreedID == 0 {
		verr.Add("breed", "is required")
	}
	if a.Weight.IsNegative() {
		verr.Add("weight", "must not be negative")
	}
	if a.AgeMonths < 0 {
		verr.Add("age_months", "must not be negative")
	}
	if a.Gender != GenderMale && a.Gender != GenderFemale {
		verr.Add("gender", "is not a valid choice")
	}
	if !a.Status.Valid() {
		verr.Add("status", "is not a valid choice")
	}
	if a.Price.IsNegative() {
		verr.Add("price", "must not be negative")
	}
	if a.DateAcquired.IsZero() {
		verr.Add("date_acquired", "is required")
	}
	return verr.Err()
}

type Offer struct {
	ID            uint             `json:"id" gorm:"primaryKey"`
	Name          string           `json:"name" gorm:"size:200;not null"`
	Slug          string           `json:"slug" gorm:"size:50;uniqueIndex;not null"`
	OfferType     OfferType        `json:"offer_type" gorm:"size:20;not null"`
	AnimalType    AnimalType       `json:"animal_type" gorm:"size:10"`
	Description   string           `json:"description" gorm:"type:text"`
	Details       string           `json:"details" gorm:"type:text"`
	Price         decimal.Decimal  `json:"price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice *decimal.Decimal `json:"original_price" gorm:"type:decimal(10,2)"`
	IsActive      bool             `json:"is_active" gorm:"index"`
	IsFeatured    bool             `json:"is_featured" gorm:"index"`
	StockQuantity int              `json:"stock_quantity"`
	Image         string           `json:"image" gorm:"size:255"`
	DisplayOrder  int              `json:"display_order"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// IsOnSale reports whether an original price above the current one is recorded.
func (o *Offer) IsOnSale() bool {
	return o.OriginalPrice != nil && o.OriginalPrice.GreaterThan(o.Price)
}

// DiscountPercentage is the whole-number discount off the original price, 0 when not on sale.
// Halves round to even.
func (o *Offer) DiscountPercentage() int64 {
	if !o.IsOnSale() {
		return 0
	}
	pct := o.OriginalPrice.Sub(o.Price).Div(*o.OriginalPrice).Mul(hundred)
	return pct.RoundBank(0).IntPart()
}

func (o *Offer) Validate() error {
	verr := &apperrors.ValidationError{}
	if strings.TrimSpace(o.Name) == "" {
		verr.Add("name", "is required")
	}
	if !slugPattern.MatchString(o.Slug) {
		verr.Add("slug", "must consist of letters, numbers, underscores or hyphens")
	}
	if !o.OfferType.Valid() {
		verr.Add("offer_type", "is not a valid choice")
	}
	if o.AnimalType != "" && !o.AnimalType.Valid() {
		verr.Add("animal_type", "is not a valid choice")
	}
	if o.Price.IsNegative() {
		verr.Add("price", "must not be negative")
	}
	if o.OriginalPrice != nil && o.OriginalPrice.IsNegative() {
		verr.Add("original_price", "must not be negative")
	}
	if o.StockQuantity < 0 {
		verr.Add("stock_quantity", "must not be negative")
	}
	if o.DisplayOrder < 0 {
		verr.Add("display_order", "must not be negative")
	}
	return verr.Err()
}
