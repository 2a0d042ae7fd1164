package models

import (
	"time"

	"farmcloud/internal/apperrors"
)

type Delivery struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	OrderID           uint       `json:"order" gorm:"uniqueIndex;not null"`
	DriverName        string     `json:"driver_name" gorm:"size:100"`
	DriverPhone       string     `json:"driver_phone" gorm:"size:15"`
	VehicleInfo       string     `json:"vehicle_info" gorm:"size:100"`
	DispatchedAt      *time.Time `json:"dispatched_at"`
	DeliveredAt       *time.Time `json:"delivered_at"`
	DeliveryNotes     string     `json:"delivery_notes" gorm:"type:text"`
	CustomerSignature string     `json:"customer_signature" gorm:"size:255"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (d *Delivery) Validate() error {
	verr := &apperrors.ValidationError{}
	if d.OrderID == 0 {
		verr.Add("order", "is required")
	}
	if len(d.DriverPhone) > 15 {
		verr.Add("driver_phone", "must be at most 15 characters")
	}
	if d.DispatchedAt != nil && d.DeliveredAt != nil && d.DeliveredAt.Before(*d.DispatchedAt) {
		verr.Add("delivered_at", "must not be before dispatched_at")
	}
	return verr.Err()
}
