package models

import (
	"strings"
	"time"

	"farmcloud/internal/apperrors"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ID                     uint            `json:"id" gorm:"primaryKey"`
	OrderID                uint            `json:"order" gorm:"not null;index"`
	AnimalID               *uint           `json:"animal" gorm:"index"`
	Animal                 *Animal         `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	OfferID                *uint           `json:"offer" gorm:"index"`
	Offer                  *Offer          `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	ItemName               string          `json:"item_name" gorm:"size:200;not null"`
	ItemDescription        string          `json:"item_description" gorm:"type:text"`
	Quantity               int             `json:"quantity" gorm:"not null"`
	UnitPrice              decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	TotalPrice             decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2);not null"`
	ProcessingInstructions string          `json:"processing_instructions" gorm:"type:text"`
	CreatedAt              time.Time       `json:"created_at"`
}

// ItemKind says what an order line points at.
type ItemKind string

const (
	ItemAnimal   ItemKind = "animal"
	ItemOffer    ItemKind = "offer"
	ItemFreeForm ItemKind = "free_form"
)

// ItemRef is the catalog reference of an order line. FreeForm lines carry no ID.
type ItemRef struct {
	Kind ItemKind
	ID   uint
}

// NewItemRef builds a reference from the two optional foreign keys of the wire format.
func NewItemRef(animalID, offerID *uint) (ItemRef, error) {
	switch {
	case animalID != nil && offerID != nil:
		return ItemRef{}, apperrors.NewValidationError("offer", "an item references either an animal or an offer, not both")
	case animalID != nil:
		return ItemRef{Kind: ItemAnimal, ID: *animalID}, nil
	case offerID != nil:
		return ItemRef{Kind: ItemOffer, ID: *offerID}, nil
	default:
		return ItemRef{Kind: ItemFreeForm}, nil
	}
}

func (i *OrderItem) Ref() ItemRef {
	ref, err := NewItemRef(i.AnimalID, i.OfferID)
	if err != nil {
		return ItemRef{Kind: ItemFreeForm}
	}
	return ref
}

// SetRef stores ref in the two nullable foreign key columns.
func (i *OrderItem) SetRef(ref ItemRef) {
	i.AnimalID, i.OfferID = nil, nil
	id := ref.ID
	switch ref.Kind {
	case ItemAnimal:
		i.AnimalID = &id
	case ItemOffer:
		i.OfferID = &id
	}
}

// LineTotal is quantity × unit price.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Recalculate overwrites TotalPrice; any caller-supplied value is discarded.
func (i *OrderItem) Recalculate() {
	i.TotalPrice = LineTotal(i.Quantity, i.UnitPrice)
}

func (i *OrderItem) Validate() error {
	verr := &apperrors.ValidationError{}
	if i.AnimalID != nil && i.OfferID != nil {
		verr.Add("offer", "an item references either an animal or an offer, not both")
	}
	if strings.TrimSpace(i.ItemName) == "" {
		verr.Add("item_name", "is required")
	}
	if len(i.ItemName) > 200 {
		verr.Add("item_name", "must be at most 200 characters")
	}
	if i.Quantity < 1 {
		verr.Add("quantity", "must be at least 1")
	}
	if i.UnitPrice.IsNegative() {
		verr.Add("unit_price", "must not be negative")
	}
	return verr.Err()
}
