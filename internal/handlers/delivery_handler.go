package handlers

import (
	"net/http"
	"time"

	"farmcloud/internal/models"

	"github.com/gin-gonic/gin"
)

type deliveryRequest struct {
	Order             uint       `json:"order" binding:"required"`
	DriverName        string     `json:"driver_name" binding:"max=100"`
	DriverPhone       string     `json:"driver_phone" binding:"max=15"`
	VehicleInfo       string     `json:"vehicle_info" binding:"max=100"`
	DispatchedAt      *time.Time `json:"dispatched_at"`
	DeliveredAt       *time.Time `json:"delivered_at"`
	DeliveryNotes     string     `json:"delivery_notes"`
	CustomerSignature string     `json:"customer_signature" binding:"max=255"`
}

func deliveryRequestFrom(d *models.Delivery) deliveryRequest {
	return deliveryRequest{
		Order:             d.OrderID,
		DriverName:        d.DriverName,
		DriverPhone:       d.DriverPhone,
		VehicleInfo:       d.VehicleInfo,
		DispatchedAt:      d.DispatchedAt,
		DeliveredAt:       d.DeliveredAt,
		DeliveryNotes:     d.DeliveryNotes,
		CustomerSignature: d.CustomerSignature,
	}
}

func (r deliveryRequest) apply(d *models.Delivery) {
	d.OrderID = r.Order
	d.DriverName = r.DriverName
	d.DriverPhone = r.DriverPhone
	d.VehicleInfo = r.VehicleInfo
	d.DispatchedAt = r.DispatchedAt
	d.DeliveredAt = r.DeliveredAt
	d.DeliveryNotes = r.DeliveryNotes
	d.CustomerSignature = r.CustomerSignature
}

func (h *Handler) ListDeliveries(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	deliveries, count, err := h.svc.Deliveries.ListDeliveries(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, opts, count, deliveries)
}

func (h *Handler) CreateDelivery(c *gin.Context) {
	var req deliveryRequest
	if !bind(c, &req) {
		return
	}
	delivery := &models.Delivery{}
	req.apply(delivery)
	if err := h.svc.Deliveries.CreateDelivery(c.Request.Context(), delivery); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, delivery)
}

func (h *Handler) GetDelivery(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	delivery, err := h.svc.Deliveries.GetDelivery(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, delivery)
}

func (h *Handler) UpdateDelivery(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	delivery, err := h.svc.Deliveries.GetDelivery(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req deliveryRequest
	if isPartial(c) {
		req = deliveryRequestFrom(delivery)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(delivery)

	updated, err := h.svc.Deliveries.UpdateDelivery(c.Request.Context(), delivery)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteDelivery(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Deliveries.DeleteDelivery(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
