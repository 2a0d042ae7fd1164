package handlers

import (
	"net/http"
	"time"

	"farmcloud/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type breedRequest struct {
	Name             string            `json:"name" binding:"required,max=100"`
	AnimalType       models.AnimalType `json:"animal_type" binding:"required,oneof=GOAT SHEEP"`
	Description      string            `json:"description"`
	TypicalWeightMin decimal.Decimal   `json:"typical_weight_min"`
	TypicalWeightMax decimal.Decimal   `json:"typical_weight_max"`
}

func (r breedRequest) apply(b *models.Breed) {
	b.Name = r.Name
	b.AnimalType = r.AnimalType
	b.Description = r.Description
	b.TypicalWeightMin = r.TypicalWeightMin
	b.TypicalWeightMax = r.TypicalWeightMax
}

func breedRequestFrom(b *models.Breed) breedRequest {
	return breedRequest{
		Name:             b.Name,
		AnimalType:       b.AnimalType,
		Description:      b.Description,
		TypicalWeightMin: b.TypicalWeightMin,
		TypicalWeightMax: b.TypicalWeightMax,
	}
}

func (h *Handler) ListBreeds(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	breeds, count, err := h.svc.Inventory.ListBreeds(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondList(c, opts, count, breeds)
}

func (h *Handler) CreateBreed(c *gin.Context) {
	var req breedRequest
	if !bind(c, &req) {
		return
	}
	breed := &models.Breed{}
	req.apply(breed)
	if err := h.svc.Inventory.CreateBreed(c.Request.Context(), breed); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, breed)
}

func (h *Handler) GetBreed(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	breed, err := h.svc.Inventory.GetBreed(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, breed)
}

func (h *Handler) UpdateBreed(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	breed, err := h.svc.Inventory.GetBreed(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req breedRequest
	if isPartial(c) {
		req = breedRequestFrom(breed)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(breed)
	updated, err := h.svc.Inventory.UpdateBreed(c.Request.Context(), breed)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteBreed(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Inventory.DeleteBreed(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type animalRequest struct {
	TagNumber    string              `json:"tag_number" binding:"required,max=50"`
	AnimalType   models.AnimalType   `json:"animal_type" binding:"required,oneof=GOAT SHEEP"`
	BreedID      uint                `json:"breed" binding:"required"`
	Weight       decimal.Decimal     `json:"weight"`
	AgeMonths    int                 `json:"age_months" binding:"min=0"`
	Gender       models.Gender       `json:"gender" binding:"required,oneof=MALE FEMALE"`
	Color        string              `json:"color" binding:"max=50"`
	Status       models.AnimalStatus `json:"status"`
	Price        decimal.Decimal     `json:"price"`
	DateAcquired time.Time           `json:"date_acquired" binding:"required"`
	Location     string              `json:"location" binding:"max=100"`
	HealthNotes  string              `json:"health_notes"`
	Image        string              `json:"image" binding:"max=255"`
}

func (r animalRequest) apply(a *models.Animal) {
	a.TagNumber = r.TagNumber
	a.AnimalType = r.AnimalType
	a.BreedID = r.BreedID
	a.Weight = r.Weight
	a.AgeMonths = r.AgeMonths
	a.Gender = r.Gender
	a.Color = r.Color
	a.Status = r.Status
	a.Price = r.Price
	a.DateAcquired = r.DateAcquired
	a.Location = r.Location
	a.HealthNotes = r.HealthNotes
	a.Image = r.Image
}

func animalRequestFrom(a *models.Animal) animalRequest {
	return animalRequest{
		TagNumber:    a.TagNumber,
		AnimalType:   a.AnimalType,
		BreedID:      a.BreedID,
		Weight:       a.Weight,
		AgeMonths:    a.AgeMonths,
		Gender:       a.Gender,
		Color:        a.Color,
		Status:       a.Status,
		Price:        a.Price,
		DateAcquired: a.DateAcquired,
		Location:     a.Location,
		HealthNotes:  a.HealthNotes,
		Image:        a.Image,
	}
}

type animalResponse struct {
	*models.Animal
	BreedName string `json:"breed_name"`
}

func newAnimalResponse(a *models.Animal) animalResponse {
	resp := animalResponse{Animal: a}
	if a.Breed != nil {
		resp.BreedName = a.Breed.Name
	}
	return resp
}

func (h *Handler) ListAnimals(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	animals, count, err := h.svc.Inventory.ListAnimals(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	results := make([]animalResponse, len(animals))
	for i := range animals {
		results[i] = newAnimalResponse(&animals[i])
	}
	respondList(c, opts, count, results)
}

func (h *Handler) CreateAnimal(c *gin.Context) {
	var req animalRequest
	if !bind(c, &req) {
		return
	}
	animal := &models.Animal{}
	req.apply(animal)
	created, err := h.svc.Inventory.CreateAnimal(c.Request.Context(), animal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newAnimalResponse(created))
}

func (h *Handler) GetAnimal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	animal, err := h.svc.Inventory.GetAnimal(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAnimalResponse(animal))
}

func (h *Handler) UpdateAnimal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	animal, err := h.svc.Inventory.GetAnimal(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req animalRequest
	if isPartial(c) {
		req = animalRequestFrom(animal)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(animal)
	updated, err := h.svc.Inventory.UpdateAnimal(c.Request.Context(), animal)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAnimalResponse(updated))
}

func (h *Handler) DeleteAnimal(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Inventory.DeleteAnimal(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkAnimalAvailable(c *gin.Context) {
	h.setAnimalStatus(c, models.AnimalAvailable)
}

func (h *Handler) MarkAnimalSold(c *gin.Context) {
	h.setAnimalStatus(c, models.AnimalSold)
}

func (h *Handler) setAnimalStatus(c *gin.Context, status models.AnimalStatus) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	animal, err := h.svc.Inventory.SetAnimalStatus(c.Request.Context(), id, status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newAnimalResponse(animal))
}

type offerRequest struct {
	Name          string            `json:"name" binding:"required,max=200"`
	Slug          string            `json:"slug" binding:"required,max=50"`
	OfferType     models.OfferType  `json:"offer_type" binding:"required"`
	AnimalType    models.AnimalType `json:"animal_type" binding:"omitempty,oneof=GOAT SHEEP"`
	Description   string            `json:"description"`
	Details       string            `json:"details"`
	Price         decimal.Decimal   `json:"price"`
	OriginalPrice *decimal.Decimal  `json:"original_price"`
	IsActive      *bool             `json:"is_active"`
	IsFeatured    *bool             `json:"is_featured"`
	StockQuantity int               `json:"stock_quantity" binding:"min=0"`
	Image         string            `json:"image" binding:"max=255"`
	DisplayOrder  int               `json:"display_order" binding:"min=0"`
}

func (r offerRequest) apply(o *models.Offer) {
	o.Name = r.Name
	o.Slug = r.Slug
	o.OfferType = r.OfferType
	o.AnimalType = r.AnimalType
	o.Description = r.Description
	o.Details = r.Details
	o.Price = r.Price
	o.OriginalPrice = r.OriginalPrice
	if r.IsActive != nil {
		o.IsActive = *r.IsActive
	}
	if r.IsFeatured != nil {
		o.IsFeatured = *r.IsFeatured
	}
	o.StockQuantity = r.StockQuantity
	o.Image = r.Image
	o.DisplayOrder = r.DisplayOrder
}

func offerRequestFrom(o *models.Offer) offerRequest {
	active, featured := o.IsActive, o.IsFeatured
	return offerRequest{
		Name:          o.Name,
		Slug:          o.Slug,
		OfferType:     o.OfferType,
		AnimalType:    o.AnimalType,
		Description:   o.Description,
		Details:       o.Details,
		Price:         o.Price,
		OriginalPrice: o.OriginalPrice,
		IsActive:      &active,
		IsFeatured:    &featured,
		StockQuantity: o.StockQuantity,
		Image:         o.Image,
		DisplayOrder:  o.DisplayOrder,
	}
}

type offerResponse struct {
	*models.Offer
	IsOnSale           bool  `json:"is_on_sale"`
	DiscountPercentage int64 `json:"discount_percentage"`
}

func newOfferResponse(o *models.Offer) offerResponse {
	return offerResponse{Offer: o, IsOnSale: o.IsOnSale(), DiscountPercentage: o.DiscountPercentage()}
}

func (h *Handler) ListOffers(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	offers, count, err := h.svc.Inventory.ListOffers(c.Request.Context(), opts)
	if err != nil {
		h.respondError(c, err)
		return
	}
	results := make([]offerResponse, len(offers))
	for i := range offers {
		results[i] = newOfferResponse(&offers[i])
	}
	respondList(c, opts, count, results)
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var req offerRequest
	if !bind(c, &req) {
		return
	}
	offer := &models.Offer{IsActive: true}
	req.apply(offer)
	if err := h.svc.Inventory.CreateOffer(c.Request.Context(), offer); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newOfferResponse(offer))
}

func (h *Handler) GetOffer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	offer, err := h.svc.Inventory.GetOffer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOfferResponse(offer))
}

func (h *Handler) UpdateOffer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	offer, err := h.svc.Inventory.GetOffer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req offerRequest
	if isPartial(c) {
		req = offerRequestFrom(offer)
	}
	if !bind(c, &req) {
		return
	}
	req.apply(offer)
	updated, err := h.svc.Inventory.UpdateOffer(c.Request.Context(), offer)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newOfferResponse(updated))
}

func (h *Handler) DeleteOffer(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.Inventory.DeleteOffer(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
