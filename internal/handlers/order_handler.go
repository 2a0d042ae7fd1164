package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"farmcloud/internal/apperrors"
	"farmcloud/internal/models"
	"farmcloud/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type orderItemRequest struct {
	Animal                 *uint            `json:"animal"`
	Offer                  *uint            `json:"offer"`
	ItemName               string           `json:"item_name" binding:"max=200"`
	ItemDescription        string           `json:"item_description"`
	Quantity               *int             `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice              *decimal.Decimal `json:"unit_price"`
	ProcessingInstructions string           `json:"processing_instructions"`
}

func (r orderItemRequest) draft() (services.ItemDraft, error) {
	ref, err := models.NewItemRef(r.Animal, r.Offer)
	if err != nil {
		return services.ItemDraft{}, err
	}
	quantity := 1
	if r.Quantity != nil {
		quantity = *r.Quantity
	}
	return services.ItemDraft{
		Ref:                    ref,
		ItemName:               r.ItemName,
		ItemDescription:        r.ItemDescription,
		Quantity:               quantity,
		UnitPrice:              r.UnitPrice,
		ProcessingInstructions: r.ProcessingInstructions,
	}, nil
}

type orderRequest struct {
	CustomerID       uint                  `json:"customer_id" binding:"required"`
	Status           models.OrderStatus    `json:"status"`
	DeliveryMethod   models.DeliveryMethod `json:"delivery_method" binding:"required"`
	DeliveryAddress  string                `json:"delivery_address"`
	DeliveryDate     *time.Time            `json:"delivery_date"`
	DeliveryTimeSlot string                `json:"delivery_time_slot" binding:"max=50"`
	DeliveryNotes    string                `json:"delivery_notes"`
	PaymentMethod    models.PaymentMethod  `json:"payment_method"`
	Subtotal         *decimal.Decimal      `json:"subtotal"`
	DeliveryFee      *decimal.Decimal      `json:"delivery_fee"`
	DiscountAmount   decimal.Decimal       `json:"discount_amount"`
	AmountPaid       decimal.Decimal       `json:"amount_paid"`
	CustomerNotes    string                `json:"customer_notes"`
	InternalNotes    string                `json:"internal_notes"`
	Items            []orderItemRequest    `json:"items" binding:"dive"`
}

func orderRequestFrom(o *models.Order) orderRequest {
	subtotal, fee := o.Subtotal, o.DeliveryFee
	return orderRequest{
		CustomerID:       o.CustomerID,
		Status:           o.Status,
		DeliveryMethod:   o.DeliveryMethod,
		DeliveryAddress:  o.DeliveryAddress,
		DeliveryDate:     o.DeliveryDate,
		DeliveryTimeSlot: o.DeliveryTimeSlot,
		DeliveryNotes:    o.DeliveryNotes,
		PaymentMethod:    o.PaymentMethod,
		Subtotal:         &subtotal,
		DeliveryFee:      &fee,
		DiscountAmount:   o.DiscountAmount,
		AmountPaid:       o.AmountPaid,
		CustomerNotes:    o.CustomerNotes,
		InternalNotes:    o.InternalNotes,
	}
}

func (r orderRequest) input() (services.CreateOrderInput, error) {
	input := services.CreateOrderInput{
		CustomerID:       r.CustomerID,
		Status:           r.Status,
		DeliveryMethod:   r.DeliveryMethod,
		DeliveryAddress:  r.DeliveryAddress,
		DeliveryDate:     r.DeliveryDate,
		DeliveryTimeSlot: r.DeliveryTimeSlot,
		DeliveryNotes:    r.DeliveryNotes,
		PaymentMethod:    r.PaymentMethod,
		Subtotal:         r.Subtotal,
		DeliveryFee:      r.DeliveryFee,
		DiscountAmount:   r.DiscountAmount,
		AmountPaid:       r.AmountPaid,
		CustomerNotes:    r.CustomerNotes,
		InternalNotes:    r.InternalNotes,
		Items:            make([]services.ItemDraft, 0, len(r.Items)),
	}
	verr := &apperrors.ValidationError{}
	for i, item := range r.Items {
		draft, err := item.draft()
		if err != nil {
			if itemErr, ok := apperrors.AsValidation(err); ok {
				verr.Merge(fmt.Sprintf("items[%d].", i), itemErr)
				continue
			}
			return input, err
		}
		input.Items = append(input.Items, draft)
	}
	return input, verr.Err()
}

// apply copies editable fields onto an existing order. Items are managed through /order-items.
func (r orderRequest) apply(o *models.Order) {
	o.CustomerID = r.CustomerID
	if r.Status != "" {
		o.Status = r.Status
	}
	o.DeliveryMethod = r.DeliveryMethod
	o.DeliveryAddress = r.DeliveryAddress
	o.DeliveryDate = r.DeliveryDate
	o.DeliveryTimeSlot = r.DeliveryTimeSlot
	o.DeliveryNotes = r.DeliveryNotes
	o.PaymentMethod = r.PaymentMethod
	if r.Subtotal != nil {
		o.Subtotal = *r.Subtotal
	}
	if r.DeliveryFee != nil {
		o.DeliveryFee = *r.DeliveryFee
	}
	o.DiscountAmount = r.DiscountAmount
	o.AmountPaid = r.AmountPaid
	o.CustomerNotes = r.CustomerNotes
	o.InternalNotes = r.InternalNotes
}

type orderResponse struct {
	*models.Order
	BalanceDue    decimal.Decimal `json:"balance_due"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
}

func newOrderResponse(o *models.Order) orderResponse {
	resp := orderResponse{Order: o, BalanceDue: o.BalanceDue()}
	if o.Customer != nil {
		resp.CustomerName = o.Customer.FullName
		resp.CustomerPhone = o.Customer.PhoneNumber
	}
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return resp
}

func (h *Handler) ListOrders(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	orders, count, err := h.svc.Orders.ListOrders(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	results := make([]orderResponse, len(orders))
	for i := range orders {
		results[i] = newOrderResponse(&orders[i])
	}
	respondList(c, opts, count, results)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if !bind(c, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.metrics.OrderCreated()
	c.JSON(http.StatusCreated, newOrderResponse(order))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req orderRequest
	if isPartial(c) {
		req = orderRequestFrom(order)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(order)

	updated, err := h.svc.Orders.UpdateOrder(c.Request.Context(), order)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(updated))
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ConfirmOrder(c *gin.Context) {
	h.orderAction(c, h.svc.Orders.ConfirmOrder)
}

func (h *Handler) PrepareOrder(c *gin.Context) {
	h.orderAction(c, h.svc.Orders.PrepareOrder)
}

func (h *Handler) CompleteOrder(c *gin.Context) {
	h.orderAction(c, h.svc.Orders.CompleteOrder)
}

func (h *Handler) RecalculateOrder(c *gin.Context) {
	h.orderAction(c, h.svc.Orders.RecalculateSubtotal)
}

type orderActionFunc func(ctx context.Context, id uint) (*models.Order, error)

func (h *Handler) orderAction(c *gin.Context, action orderActionFunc) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := action(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOrderResponse(order))
}

type orderItemWriteRequest struct {
	Order                  uint             `json:"order" binding:"required"`
	Animal                 *uint            `json:"animal"`
	Offer                  *uint            `json:"offer"`
	ItemName               string           `json:"item_name" binding:"max=200"`
	ItemDescription        string           `json:"item_description"`
	Quantity               *int             `json:"quantity" binding:"omitempty,min=1"`
	UnitPrice              *decimal.Decimal `json:"unit_price"`
	ProcessingInstructions string           `json:"processing_instructions"`
}

func orderItemWriteRequestFrom(item *models.OrderItem) orderItemWriteRequest {
	quantity, price := item.Quantity, item.UnitPrice
	return orderItemWriteRequest{
		Order:                  item.OrderID,
		Animal:                 item.AnimalID,
		Offer:                  item.OfferID,
		ItemName:               item.ItemName,
		ItemDescription:        item.ItemDescription,
		Quantity:               &quantity,
		UnitPrice:              &price,
		ProcessingInstructions: item.ProcessingInstructions,
	}
}

func (r orderItemWriteRequest) draft() (services.ItemDraft, error) {
	return orderItemRequest{
		Animal:                 r.Animal,
		Offer:                  r.Offer,
		ItemName:               r.ItemName,
		ItemDescription:        r.ItemDescription,
		Quantity:               r.Quantity,
		UnitPrice:              r.UnitPrice,
		ProcessingInstructions: r.ProcessingInstructions,
	}.draft()
}

func (h *Handler) ListOrderItems(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	items, count, err := h.svc.Orders.ListItems(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, opts, count, items)
}

func (h *Handler) CreateOrderItem(c *gin.Context) {
	var req orderItemWriteRequest
	if !bind(c, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.svc.Orders.AddItem(c.Request.Context(), req.Order, draft)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetOrderItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.svc.Orders.GetItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) UpdateOrderItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.svc.Orders.GetItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req orderItemWriteRequest
	if isPartial(c) {
		req = orderItemWriteRequestFrom(item)
	}
	if !bind(c, &req) {
		return
	}
	draft, err := req.draft()
	if err != nil {
		h.respondError(c, err)
		return
	}

	item.OrderID = req.Order
	item.SetRef(draft.Ref)
	item.ItemName = draft.ItemName
	item.ItemDescription = draft.ItemDescription
	item.Quantity = draft.Quantity
	if draft.UnitPrice != nil {
		item.UnitPrice = *draft.UnitPrice
	}
	item.ProcessingInstructions = draft.ProcessingInstructions

	updated, err := h.svc.Orders.UpdateItem(c.Request.Context(), item)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteOrderItem(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Orders.DeleteItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
