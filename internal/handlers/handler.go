package handlers

import (
	"context"
	"net/http"
	"time"

	"farmcloud/internal/middleware"
	"farmcloud/internal/observability"
	"farmcloud/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services are the use cases the HTTP API exposes.
type Services struct {
	Customers  services.CustomerService
	Inventory  services.InventoryService
	Orders     services.OrderService
	Deliveries services.DeliveryService
	Settings   services.SettingsService
	Users      services.UserService
}

type Handler struct {
	svc     Services
	metrics *observability.Metrics
	log     *zap.Logger
}

func NewHandler(svc Services, metrics *observability.Metrics, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{svc: svc, metrics: metrics, log: log}
}

// bind decodes the JSON body into req and runs its binding tags. For PATCH, req
// must already carry the current values so that fields absent from the body are kept.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func isPartial(c *gin.Context) bool {
	return c.Request.Method == http.MethodPatch
}

// Register mounts every collection under api.
func (h *Handler) Register(api *gin.RouterGroup) {
	customers := api.Group("/customers")
	customers.GET("", h.ListCustomers)
	customers.POST("", h.CreateCustomer)
	customers.GET("/:id", h.GetCustomer)
	customers.PUT("/:id", h.UpdateCustomer)
	customers.PATCH("/:id", h.UpdateCustomer)
	customers.DELETE("/:id", h.DeleteCustomer)
	customers.POST("/:id/mark-vip", h.MarkCustomerVIP)
	customers.POST("/:id/remove-vip", h.RemoveCustomerVIP)

	breeds := api.Group("/breeds")
	breeds.GET("", h.ListBreeds)
	breeds.POST("", h.CreateBreed)
	breeds.GET("/:id", h.GetBreed)
	breeds.PUT("/:id", h.UpdateBreed)
	breeds.PATCH("/:id", h.UpdateBreed)
	breeds.DELETE("/:id", h.DeleteBreed)

	animals := api.Group("/animals")
	animals.GET("", h.ListAnimals)
	animals.POST("", h.CreateAnimal)
	animals.GET("/:id", h.GetAnimal)
	animals.PUT("/:id", h.UpdateAnimal)
	animals.PATCH("/:id", h.UpdateAnimal)
	animals.DELETE("/:id", h.DeleteAnimal)
	animals.POST("/:id/mark-available", h.MarkAnimalAvailable)
	animals.POST("/:id/mark-sold", h.MarkAnimalSold)

	offers := api.Group("/offers")
	offers.GET("", h.ListOffers)
	offers.POST("", h.CreateOffer)
	offers.GET("/:id", h.GetOffer)
	offers.PUT("/:id", h.UpdateOffer)
	offers.PATCH("/:id", h.UpdateOffer)
	offers.DELETE("/:id", h.DeleteOffer)

	orders := api.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.PATCH("/:id", h.UpdateOrder)
	orders.DELETE("/:id", h.DeleteOrder)
	orders.POST("/:id/confirm", h.ConfirmOrder)
	orders.POST("/:id/prepare", h.PrepareOrder)
	orders.POST("/:id/complete", h.CompleteOrder)
	orders.POST("/:id/recalculate", h.RecalculateOrder)

	items := api.Group("/order-items")
	items.GET("", h.ListOrderItems)
	items.POST("", h.CreateOrderItem)
	items.GET("/:id", h.GetOrderItem)
	items.PUT("/:id", h.UpdateOrderItem)
	items.PATCH("/:id", h.UpdateOrderItem)
	items.DELETE("/:id", h.DeleteOrderItem)

	deliveries := api.Group("/deliveries")
	deliveries.GET("", h.ListDeliveries)
	deliveries.POST("", h.CreateDelivery)
	deliveries.GET("/:id", h.GetDelivery)
	deliveries.PUT("/:id", h.UpdateDelivery)
	deliveries.PATCH("/:id", h.UpdateDelivery)
	deliveries.DELETE("/:id", h.DeleteDelivery)

	users := api.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/by_role", h.ListUsersByRole)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
	users.PATCH("/:id/toggle_status", h.ToggleUserStatus)

	settings := api.Group("/settings")
	for _, path := range []string{"", "/:id"} {
		settings.GET(path, h.GetSettings)
		settings.PUT(path, h.UpdateSettings)
		settings.PATCH(path, h.UpdateSettings)
		settings.POST(path, h.SettingsMethodNotAllowed)
		settings.DELETE(path, h.DeleteSettings)
	}
}

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Health reports 200 when every check passes, 503 otherwise.
func Health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "unavailable"
		}
		c.JSON(status, gin.H{"status": state, "checks": report})
	}
}

// RouterConfig wires the middleware chain around the API.
type RouterConfig struct {
	Handler     *Handler
	Metrics     *observability.Metrics
	Log         *zap.Logger
	Secure      middleware.SecureOptions
	CORSOrigins []string
	Limiter     middleware.Limiter
	RateLimit   int
	RateWindow  time.Duration
	Checks      map[string]HealthCheck
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	registerValidators()
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(log),
		middleware.AccessLog(log),
		cfg.Metrics.Middleware(),
		middleware.Secure(cfg.Secure, log),
		middleware.CORS(cfg.CORSOrigins),
	)

	r.GET("/healthz", Health(cfg.Checks))
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))

	api := r.Group("/api", middleware.WriteRateLimit(cfg.Limiter, cfg.RateLimit, cfg.RateWindow, log))
	cfg.Handler.Register(api)
	return r
}
