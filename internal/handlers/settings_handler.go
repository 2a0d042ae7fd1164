package handlers

import (
	"net/http"

	"farmcloud/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type settingsRequest struct {
	Currency           string          `json:"currency" binding:"required,len=3"`
	Timezone           string          `json:"timezone" binding:"required,max=50"`
	Language           string          `json:"language" binding:"required,len=2"`
	BusinessName       string          `json:"business_name" binding:"required,max=255"`
	Email              string          `json:"email" binding:"required,email,max=254"`
	Phone              string          `json:"phone" binding:"required,max=20"`
	Address            string          `json:"address" binding:"required"`
	EmailNotifications bool            `json:"email_notifications"`
	SMSNotifications   bool            `json:"sms_notifications"`
	OrderAlerts        bool            `json:"order_alerts"`
	LowStockAlerts     bool            `json:"low_stock_alerts"`
	DeliveryFee        decimal.Decimal `json:"delivery_fee"`
	TaxRate            decimal.Decimal `json:"tax_rate"`
	MinOrderAmount     decimal.Decimal `json:"min_order_amount"`
	UpdatedBy          *string         `json:"updated_by" binding:"omitempty,max=100"`
}

func settingsRequestFrom(s *models.Settings) settingsRequest {
	return settingsRequest{
		Currency:           s.Currency,
		Timezone:           s.Timezone,
		Language:           s.Language,
		BusinessName:       s.BusinessName,
		Email:              s.Email,
		Phone:              s.Phone,
		Address:            s.Address,
		EmailNotifications: s.EmailNotifications,
		SMSNotifications:   s.SMSNotifications,
		OrderAlerts:        s.OrderAlerts,
		LowStockAlerts:     s.LowStockAlerts,
		DeliveryFee:        s.DeliveryFee,
		TaxRate:            s.TaxRate,
		MinOrderAmount:     s.MinOrderAmount,
		UpdatedBy:          s.UpdatedBy,
	}
}

func (r settingsRequest) apply(s *models.Settings) {
	s.ID = models.SettingsID
	s.Currency = r.Currency
	s.Timezone = r.Timezone
	s.Language = r.Language
	s.BusinessName = r.BusinessName
	s.Email = r.Email
	s.Phone = r.Phone
	s.Address = r.Address
	s.EmailNotifications = r.EmailNotifications
	s.SMSNotifications = r.SMSNotifications
	s.OrderAlerts = r.OrderAlerts
	s.LowStockAlerts = r.LowStockAlerts
	s.DeliveryFee = r.DeliveryFee
	s.TaxRate = r.TaxRate
	s.MinOrderAmount = r.MinOrderAmount
	s.UpdatedBy = r.UpdatedBy
}

// GetSettings serves the singleton for both /settings and /settings/:id; the id is ignored.
func (h *Handler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Settings.Load(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	settings, err := h.svc.Settings.Load(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req settingsRequest
	if isPartial(c) {
		req = settingsRequestFrom(settings)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(settings)

	saved, err := h.svc.Settings.Save(c.Request.Context(), settings)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) SettingsMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
}

// DeleteSettings acknowledges the request but keeps the row.
func (h *Handler) DeleteSettings(c *gin.Context) {
	if err := h.svc.Settings.Delete(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
