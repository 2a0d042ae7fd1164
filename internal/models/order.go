package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"farmcloud/internal/apperrors"

	"github.com/shopspring/decimal"
)

// Order number layout: ORD-YYYYMMDD-0001.
const (
	OrderNumberPrefix = "ORD-"
	OrderDayLayout    = "20060102"
)

type Order struct {
	ID               uint            `json:"id" gorm:"primaryKey"`
	OrderNumber      string          `json:"order_number" gorm:"size:50;uniqueIndex;not null"`
	CustomerID       uint            `json:"customer_id" gorm:"not null;index"`
	Customer         *Customer       `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Status           OrderStatus     `json:"status" gorm:"size:20;not null;index"`
	DeliveryMethod   DeliveryMethod  `json:"delivery_method" gorm:"size:20;not null"`
	DeliveryAddress  string          `json:"delivery_address" gorm:"type:text"`
	DeliveryDate     *time.Time      `json:"delivery_date" gorm:"index"`
	DeliveryTimeSlot string          `json:"delivery_time_slot" gorm:"size:50"`
	DeliveryNotes    string          `json:"delivery_notes" gorm:"type:text"`
	PaymentStatus    PaymentStatus   `json:"payment_status" gorm:"size:20;not null"`
	PaymentMethod    PaymentMethod   `json:"payment_method" gorm:"size:20"`
	Subtotal         decimal.Decimal `json:"subtotal" gorm:"type:decimal(10,2);not null"`
	DeliveryFee      decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(8,2);not null"`
	DiscountAmount   decimal.Decimal `json:"discount_amount" gorm:"type:decimal(8,2);not null"`
	TotalAmount      decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	AmountPaid       decimal.Decimal `json:"amount_paid" gorm:"type:decimal(10,2);not null"`
	CustomerNotes    string          `json:"customer_notes" gorm:"type:text"`
	InternalNotes    string          `json:"internal_notes" gorm:"type:text"`
	CreatedAt        time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time       `json:"updated_at"`
	ConfirmedAt      *time.Time      `json:"confirmed_at"`
	CompletedAt      *time.Time      `json:"completed_at"`

	Items    []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Delivery *Delivery   `json:"delivery,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderConfirmed      OrderStatus = "CONFIRMED"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReady          OrderStatus = "READY"
	OrderOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderDelivered      OrderStatus = "DELIVERED"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderPreparing, OrderReady,
		OrderOutForDelivery, OrderDelivered, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// RevenueStatuses are the statuses counted in a customer's total spent.
var RevenueStatuses = []OrderStatus{OrderCompleted, OrderDelivered}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPartial  PaymentStatus = "PARTIAL"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCard         PaymentMethod = "CARD"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentOnline       PaymentMethod = "ONLINE"
)

// Valid accepts the empty method, which means "not recorded yet".
func (m PaymentMethod) Valid() bool {
	switch m {
	case "", PaymentCash, PaymentCard, PaymentBankTransfer, PaymentOnline:
		return true
	}
	return false
}

type DeliveryMethod string

const (
	DeliveryFarmPickup   DeliveryMethod = "FARM_PICKUP"
	DeliveryHomeDelivery DeliveryMethod = "HOME_DELIVERY"
)

func (m DeliveryMethod) Valid() bool {
	return m == DeliveryFarmPickup || m == DeliveryHomeDelivery
}

// CalculateTotal returns subtotal + delivery fee - discount.
func CalculateTotal(subtotal, deliveryFee, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(deliveryFee).Sub(discount)
}

// PaymentStatusFor derives the payment status from what was paid against the total.
// Full payment is checked first, so a zero total counts as paid.
func PaymentStatusFor(amountPaid, total decimal.Decimal) PaymentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(total):
		return PaymentPaid
	case amountPaid.IsPositive():
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// BalanceDue is never negative.
func BalanceDue(total, amountPaid decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, total.Sub(amountPaid))
}

// Recalculate refreshes the derived money fields. Call it right before every persist.
func (o *Order) Recalculate() {
	o.TotalAmount = CalculateTotal(o.Subtotal, o.DeliveryFee, o.DiscountAmount)
	o.PaymentStatus = PaymentStatusFor(o.AmountPaid, o.TotalAmount)
}

func (o *Order) BalanceDue() decimal.Decimal {
	return BalanceDue(o.TotalAmount, o.AmountPaid)
}

// ItemsSubtotal sums the totals of the loaded items.
func (o *Order) ItemsSubtotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range o.Items {
		sum = sum.Add(o.Items[i].TotalPrice)
	}
	return sum
}

func (o *Order) Validate() error {
	verr := &apperrors.ValidationError{}
	if o.CustomerID == 0 {
		verr.Add("customer_id", "is required")
	}
	if !o.Status.Valid() {
		verr.Add("status", "is not a valid choice")
	}
	if !o.DeliveryMethod.Valid() {
		verr.Add("delivery_method", "is not a valid choice")
	}
	if !o.PaymentMethod.Valid() {
		verr.Add("payment_method", "is not a valid choice")
	}
	if len(o.DeliveryTimeSlot) > 50 {
		verr.Add("delivery_time_slot", "must be at most 50 characters")
	}
	for field, value := range map[string]decimal.Decimal{
		"subtotal":        o.Subtotal,
		"delivery_fee":    o.DeliveryFee,
		"discount_amount": o.DiscountAmount,
		"amount_paid":     o.AmountPaid,
	} {
		if value.IsNegative() {
			verr.Add(field, "must not be negative")
		}
	}
	if CalculateTotal(o.Subtotal, o.DeliveryFee, o.DiscountAmount).IsNegative() {
		verr.Add("discount_amount", "must not exceed subtotal plus delivery fee")
	}
	return verr.Err()
}

// OrderDayPrefix is the order number prefix shared by every order of day (YYYYMMDD).
func OrderDayPrefix(day string) string {
	return OrderNumberPrefix + day + "-"
}

func FormatOrderNumber(day string, seq int) string {
	return fmt.Sprintf("%s%04d", OrderDayPrefix(day), seq)
}

// ParseOrderSequence extracts the per-day sequence from an order number of the given day.
func ParseOrderSequence(orderNumber, day string) (int, bool) {
	suffix, ok := strings.CutPrefix(orderNumber, OrderDayPrefix(day))
	if !ok || suffix == "" {
		return 0, false
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// OrderDay formats t as the order number day in loc.
func OrderDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(OrderDayLayout)
}
