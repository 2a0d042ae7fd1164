package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"farmcloud/internal/models"

	"go.uber.org/zap"
)

// MessageSender delivers a text message to a phone number.
type MessageSender interface {
	SendTextMessage(ctx context.Context, phone, message string) error
}

// OrderNotifier tells customers about their orders. Failures never propagate.
type OrderNotifier interface {
	OrderCreated(ctx context.Context, order *models.Order, settings *models.Settings)
}

const notificationTimeout = 10 * time.Second

type notificationService struct {
	sender MessageSender
	log    *zap.Logger
}

// NewNotificationService returns a notifier; with a nil sender it does nothing.
func NewNotificationService(sender MessageSender, log *zap.Logger) OrderNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &notificationService{sender: sender, log: log}
}

func (s *notificationService) OrderCreated(ctx context.Context, order *models.Order, settings *models.Settings) {
	if s.sender == nil || settings == nil || !settings.OrderAlerts || order.Customer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	defer cancel()

	phone := order.Customer.ContactNumber()
	if err := s.sender.SendTextMessage(ctx, phone, OrderConfirmationMessage(order, settings)); err != nil {
		s.log.Warn("order alert failed",
			zap.String("order_number", order.OrderNumber),
			zap.Uint("customer_id", order.CustomerID),
			zap.Error(err))
		return
	}
	s.log.Info("order alert sent", zap.String("order_number", order.OrderNumber))
}

// OrderConfirmationMessage renders the customer-facing confirmation in their preferred language.
func OrderConfirmationMessage(order *models.Order, settings *models.Settings) string {
	var b strings.Builder
	name := ""
	if order.Customer != nil {
		name = order.Customer.FullName
	}

	if order.Customer != nil && order.Customer.PreferredLanguage == models.LanguageArabic {
		fmt.Fprintf(&b, "مرحباً %s،\n", name)
		fmt.Fprintf(&b, "تم استلام طلبك رقم %s.\n", order.OrderNumber)
		fmt.Fprintf(&b, "المجموع: %s %s\n", order.TotalAmount.StringFixed(2), settings.Currency)
		if due := order.BalanceDue(); due.IsPositive() {
			fmt.Fprintf(&b, "المبلغ المتبقي: %s %s\n", due.StringFixed(2), settings.Currency)
		}
		fmt.Fprintf(&b, "%s", settings.BusinessName)
		return b.String()
	}

	fmt.Fprintf(&b, "Hello %s,\n", name)
	fmt.Fprintf(&b, "We received your order %s.\n", order.OrderNumber)
	fmt.Fprintf(&b, "Total: %s %s\n", settings.Currency, order.TotalAmount.StringFixed(2))
	if due := order.BalanceDue(); due.IsPositive() {
		fmt.Fprintf(&b, "Balance due: %s %s\n", settings.Currency, due.StringFixed(2))
	}
	if order.DeliveryMethod == models.DeliveryHomeDelivery && order.DeliveryDate != nil {
		fmt.Fprintf(&b, "Delivery on %s", order.DeliveryDate.Format("Jan 02, 2006"))
		if order.DeliveryTimeSlot != "" {
			fmt.Fprintf(&b, " (%s)", order.DeliveryTimeSlot)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Thank you for choosing %s.", settings.BusinessName)
	return b.String()
}
