package handlers

import (
	"net/http"

	"farmcloud/internal/models"

	"github.com/gin-gonic/gin"
)

type customerRequest struct {
	FullName          string                   `json:"full_name" binding:"required,max=200"`
	PhoneNumber       string                   `json:"phone_number" binding:"required,uae_phone"`
	Email             string                   `json:"email" binding:"omitempty,email,max=254"`
	AddressLine1      string                   `json:"address_line1" binding:"required,max=255"`
	AddressLine2      string                   `json:"address_line2" binding:"max=255"`
	City              string                   `json:"city" binding:"required,max=100"`
	Emirate           models.Emirate           `json:"emirate" binding:"required"`
	PostalCode        string                   `json:"postal_code" binding:"max=10"`
	CustomerType      models.CustomerType      `json:"customer_type"`
	PreferredLanguage models.PreferredLanguage `json:"preferred_language"`
	WhatsAppNumber    string                   `json:"whatsapp_number" binding:"omitempty,uae_phone"`
	Notes             string                   `json:"notes"`
	IsActive          *bool                    `json:"is_active"`
	IsVIP             *bool                    `json:"is_vip"`
}

func customerRequestFrom(c *models.Customer) customerRequest {
	active, vip := c.IsActive, c.IsVIP
	return customerRequest{
		FullName:          c.FullName,
		PhoneNumber:       c.PhoneNumber,
		Email:             c.Email,
		AddressLine1:      c.AddressLine1,
		AddressLine2:      c.AddressLine2,
		City:              c.City,
		Emirate:           c.Emirate,
		PostalCode:        c.PostalCode,
		CustomerType:      c.CustomerType,
		PreferredLanguage: c.PreferredLanguage,
		WhatsAppNumber:    c.WhatsAppNumber,
		Notes:             c.Notes,
		IsActive:          &active,
		IsVIP:             &vip,
	}
}

func (r customerRequest) apply(c *models.Customer) {
	c.FullName = r.FullName
	c.PhoneNumber = r.PhoneNumber
	c.Email = r.Email
	c.AddressLine1 = r.AddressLine1
	c.AddressLine2 = r.AddressLine2
	c.City = r.City
	c.Emirate = r.Emirate
	c.PostalCode = r.PostalCode
	c.CustomerType = r.CustomerType
	c.PreferredLanguage = r.PreferredLanguage
	c.WhatsAppNumber = r.WhatsAppNumber
	c.Notes = r.Notes
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	if r.IsVIP != nil {
		c.IsVIP = *r.IsVIP
	}
}

type customerResponse struct {
	*models.Customer
	models.CustomerMetrics
}

func (h *Handler) withMetrics(c *gin.Context, customer *models.Customer) (customerResponse, bool) {
	metrics, err := h.svc.Customers.Metrics(c.Request.Context(), customer.ID)
	if err != nil {
		h.respondError(c, err)
		return customerResponse{}, false
	}
	return customerResponse{Customer: customer, CustomerMetrics: metrics}, true
}

func (h *Handler) ListCustomers(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	customers, count, err := h.svc.Customers.ListCustomers(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ids := make([]uint, len(customers))
	for i := range customers {
		ids[i] = customers[i].ID
	}
	metrics, err := h.svc.Customers.MetricsFor(c.Request.Context(), ids)
	if err != nil {
		h.respondError(c, err)
		return
	}

	results := make([]customerResponse, len(customers))
	for i := range customers {
		results[i] = customerResponse{Customer: &customers[i], CustomerMetrics: metrics[customers[i].ID]}
	}
	respondList(c, opts, count, results)
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if !bind(c, &req) {
		return
	}
	customer := &models.Customer{IsActive: true}
	req.apply(customer)
	if err := h.svc.Customers.CreateCustomer(c.Request.Context(), customer); err != nil {
		h.respondError(c, err)
		return
	}
	if resp, ok := h.withMetrics(c, customer); ok {
		c.JSON(http.StatusCreated, resp)
	}
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	customer, err := h.svc.Customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if resp, ok := h.withMetrics(c, customer); ok {
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	customer, err := h.svc.Customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req customerRequest
	if isPartial(c) {
		req = customerRequestFrom(customer)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(customer)

	updated, err := h.svc.Customers.UpdateCustomer(c.Request.Context(), customer)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if resp, ok := h.withMetrics(c, updated); ok {
		c.JSON(http.StatusOK, resp)
	}
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Customers.DeleteCustomer(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkCustomerVIP(c *gin.Context) {
	h.setCustomerVIP(c, true)
}

func (h *Handler) RemoveCustomerVIP(c *gin.Context) {
	h.setCustomerVIP(c, false)
}

func (h *Handler) setCustomerVIP(c *gin.Context, vip bool) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	customer, err := h.svc.Customers.SetVIP(c.Request.Context(), id, vip)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if resp, ok := h.withMetrics(c, customer); ok {
		c.JSON(http.StatusOK, resp)
	}
}
