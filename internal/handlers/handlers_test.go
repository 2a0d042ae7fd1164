package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"farmcloud/internal/database"
	"farmcloud/internal/middleware"
	"farmcloud/internal/observability"
	"farmcloud/internal/repository"
	"farmcloud/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

type testServer struct {
	router  *gin.Engine
	repos   *repository.Repositories
	metrics *observability.Metrics
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Initialize("sqlite://"+filepath.Join(t.TempDir(), "api.db"), database.Options{})
	require.NoError(t, err)
	repos := repository.New(db)

	log := zap.NewNop()
	settings := services.NewSettingsService(repos.Settings, nil, time.Minute, log)
	svc := Services{
		Customers:  services.NewCustomerService(repos),
		Inventory:  services.NewInventoryService(repos),
		Orders:     services.NewOrderService(repos, settings, nil, nil, log, services.WithClock(func() time.Time { return testNow })),
		Deliveries: services.NewDeliveryService(repos),
		Settings:   settings,
		Users:      services.NewUserService(repos.Users),
	}
	metrics := observability.NewMetrics()
	router := NewRouter(RouterConfig{
		Handler: NewHandler(svc, metrics, log),
		Metrics: metrics,
		Log:     log,
		Secure:  middleware.SecureOptions{},
		Checks: map[string]HealthCheck{
			"database": repos.Ping,
		},
	})
	return &testServer{router: router, repos: repos, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func assertDecimal(t *testing.T, want string, got any) {
	t.Helper()
	var raw string
	switch v := got.(type) {
	case string:
		raw = v
	case float64:
		raw = decimal.NewFromFloat(v).String()
	default:
		t.Fatalf("expected a decimal, got %T (%v)", got, got)
	}
	d, err := decimal.NewFromString(raw)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString(want).Equal(d), "want %s, got %s", want, raw)
}

func id(t *testing.T, body map[string]any) uint {
	t.Helper()
	v, ok := body["id"].(float64)
	require.True(t, ok, "response has no id: %v", body)
	return uint(v)
}

func (s *testServer) createCustomer(t *testing.T, phone string) uint {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/api/customers", map[string]any{
		"full_name":     "Ahmed Al Mansoori",
		"phone_number":  phone,
		"address_line1": "Villa 12, Street 4",
		"city":          "Dubai",
		"emirate":       "DUBAI",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return id(t, body)
}

func (s *testServer) createAnimal(t *testing.T, tag, price string) uint {
	t.Helper()
	w, breed := s.do(t, http.MethodPost, "/api/breeds", map[string]any{
		"name":               "Najdi " + tag,
		"animal_type":        "SHEEP",
		"typical_weight_min": "40",
		"typical_weight_max": "70",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, animal := s.do(t, http.MethodPost, "/api/animals", map[string]any{
		"tag_number":    tag,
		"animal_type":   "SHEEP",
		"breed":         id(t, breed),
		"weight":        "55.5",
		"age_months":    10,
		"gender":        "MALE",
		"price":         price,
		"date_acquired": "2024-01-10T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "AVAILABLE", animal["status"])
	assert.Equal(t, "Main Farm", animal["location"])
	assert.Equal(t, "Najdi "+tag, animal["breed_name"])
	return id(t, animal)
}

func TestCustomerEndpoints(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "+971501234567")

	w, body := s.do(t, http.MethodGet, "/api/customers/"+itoa(customerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_active"])
	assert.Equal(t, false, body["is_vip"])
	assert.Equal(t, float64(0), body["total_orders_count"])
	assertDecimal(t, "0", body["total_spent"])

	w, body = s.do(t, http.MethodPatch, "/api/customers/"+itoa(customerID), map[string]any{"city": "Sharjah"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Sharjah", body["city"])
	assert.Equal(t, "Ahmed Al Mansoori", body["full_name"])

	w, body = s.do(t, http.MethodPost, "/api/customers/"+itoa(customerID)+"/mark-vip", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["is_vip"])

	w, body = s.do(t, http.MethodGet, "/api/customers?is_vip=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
	assert.Len(t, body["results"], 1)
}

func TestCustomerValidation(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/customers", map[string]any{
		"full_name":     "Bad Phone",
		"phone_number":  "12345",
		"address_line1": "Street",
		"city":          "Dubai",
		"emirate":       "DUBAI",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := body["details"].(map[string]any)
	assert.Equal(t, "Phone number must be in UAE format", details["phone_number"])

	w, _ = s.do(t, http.MethodPost, "/api/customers", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/customers/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/customers/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, body = s.do(t, http.MethodGet, "/api/customers?page=0", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "page")
}

func TestCreateOrderWithItems(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "+971501234567")
	animalID := s.createAnimal(t, "SH-001", "1200")

	w, order := s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "HOME_DELIVERY",
		"items": []map[string]any{
			{"animal": animalID},
			{"item_name": "Extra processing", "quantity": 2, "unit_price": "25"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "ORD-20240315-0001", order["order_number"])
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, "UNPAID", order["payment_status"])
	assert.Equal(t, "Ahmed Al Mansoori", order["customer_name"])
	assert.Equal(t, "+971501234567", order["customer_phone"])
	assertDecimal(t, "1250", order["subtotal"])
	assertDecimal(t, "50", order["delivery_fee"])
	assertDecimal(t, "1300", order["total_amount"])
	assertDecimal(t, "1300", order["balance_due"])

	items := order["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Najdi SH-001 SHEEP (SH-001)", first["item_name"])
	assertDecimal(t, "1200", first["total_price"])
	assertDecimal(t, "50", items[1].(map[string]any)["total_price"])

	w, second := s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "FARM_PICKUP",
		"subtotal":        "300",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "ORD-20240315-0002", second["order_number"])
	assertDecimal(t, "0", second["delivery_fee"])
	assertDecimal(t, "300", second["total_amount"])

	w, customer := s.do(t, http.MethodGet, "/api/customers/"+itoa(customerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), customer["total_orders_count"])
	assert.NotNil(t, customer["last_order_date"])

	w, _ = s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "farmcloud_orders_created_total 2")
}

func TestCreateOrderErrors(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "+971501234567")

	w, body := s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     999,
		"delivery_method": "FARM_PICKUP",
		"subtotal":        "100",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid pk - object does not exist.", body["details"].(map[string]any)["customer_id"])

	w, body = s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "FARM_PICKUP",
		"items":           []map[string]any{{"animal": 12345}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "items[0].animal")

	w, body = s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "FARM_PICKUP",
		"items":           []map[string]any{{"item_name": "Box", "quantity": 0, "unit_price": "10"}},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "items[0].quantity")

	w, body = s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "FARM_PICKUP",
		"subtotal":        "100",
		"discount_amount": "150",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "discount_amount")

	w, body = s.do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), body["count"])
}

func TestOrderUpdateAndActions(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "+971501234567")

	w, order := s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "FARM_PICKUP",
		"subtotal":        "500",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	path := "/api/orders/" + itoa(id(t, order))

	w, order = s.do(t, http.MethodPatch, path, map[string]any{"amount_paid": "200"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PARTIAL", order["payment_status"])
	assertDecimal(t, "300", order["balance_due"])
	assert.Equal(t, "ORD-20240315-0001", order["order_number"])

	w, order = s.do(t, http.MethodPatch, path, map[string]any{"amount_paid": "500"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PAID", order["payment_status"])
	assertDecimal(t, "0", order["balance_due"])

	w, order = s.do(t, http.MethodPost, path+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "CONFIRMED", order["status"])
	assert.NotNil(t, order["confirmed_at"])

	w, order = s.do(t, http.MethodPost, path+"/prepare", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PREPARING", order["status"])

	w, order = s.do(t, http.MethodPost, path+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "COMPLETED", order["status"])
	assert.NotNil(t, order["completed_at"])

	w, customer := s.do(t, http.MethodGet, "/api/customers/"+itoa(customerID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertDecimal(t, "500", customer["total_spent"])

	w, _ = s.do(t, http.MethodPost, "/api/orders/999/confirm", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, _ = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderItemEndpoints(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "+971501234567")

	w, order := s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "FARM_PICKUP",
		"subtotal":        "0",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := id(t, order)

	w, item := s.do(t, http.MethodPost, "/api/order-items", map[string]any{
		"order":      orderID,
		"item_name":  "Mutton cuts",
		"quantity":   3,
		"unit_price": "40",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assertDecimal(t, "120", item["total_price"])

	w, item = s.do(t, http.MethodPatch, "/api/order-items/"+itoa(id(t, item)), map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDecimal(t, "200", item["total_price"])
	assert.Equal(t, "Mutton cuts", item["item_name"])

	w, order = s.do(t, http.MethodPost, "/api/orders/"+itoa(orderID)+"/recalculate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertDecimal(t, "200", order["subtotal"])
	assertDecimal(t, "200", order["total_amount"])

	w, body := s.do(t, http.MethodPost, "/api/order-items", map[string]any{
		"order":      9999,
		"item_name":  "Ghost",
		"unit_price": "1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "order")

	w, body = s.do(t, http.MethodGet, "/api/order-items?order="+itoa(orderID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestDeliveryEndpoints(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t, "+971501234567")
	w, order := s.do(t, http.MethodPost, "/api/orders", map[string]any{
		"customer_id":     customerID,
		"delivery_method": "HOME_DELIVERY",
		"subtotal":        "100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	orderID := id(t, order)

	w, delivery := s.do(t, http.MethodPost, "/api/deliveries", map[string]any{
		"order":       orderID,
		"driver_name": "Rashid",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.do(t, http.MethodPost, "/api/deliveries", map[string]any{"order": orderID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, delivery = s.do(t, http.MethodPatch, "/api/deliveries/"+itoa(id(t, delivery)), map[string]any{
		"dispatched_at": "2024-03-15T10:00:00Z",
		"delivered_at":  "2024-03-15T09:00:00Z",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, delivery["details"], "delivered_at")

	w, _ = s.do(t, http.MethodPost, "/api/deliveries", map[string]any{"order": 9999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInventoryEndpoints(t *testing.T) {
	s := newTestServer(t)
	animalID := s.createAnimal(t, "GT-7", "900")
	path := "/api/animals/" + itoa(animalID)

	w, animal := s.do(t, http.MethodPost, path+"/mark-sold", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SOLD", animal["status"])

	w, animal = s.do(t, http.MethodPost, path+"/mark-available", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AVAILABLE", animal["status"])

	w, _ = s.do(t, http.MethodPost, "/api/animals", map[string]any{
		"tag_number":    "GT-7",
		"animal_type":   "GOAT",
		"breed":         animal["breed"],
		"gender":        "FEMALE",
		"price":         "100",
		"date_acquired": "2024-01-10T00:00:00Z",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, offer := s.do(t, http.MethodPost, "/api/offers", map[string]any{
		"name":           "Eid half sheep",
		"slug":           "eid-half",
		"offer_type":     "HALF",
		"price":          "600",
		"original_price": "800",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, offer["is_on_sale"])
	assert.Equal(t, float64(25), offer["discount_percentage"])
	assert.Equal(t, true, offer["is_active"])

	w, offer = s.do(t, http.MethodPatch, "/api/offers/"+itoa(id(t, offer)), map[string]any{"original_price": nil})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, offer["is_on_sale"])
	assert.Equal(t, float64(0), offer["discount_percentage"])
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, settings := s.do(t, http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AED", settings["currency"])
	assert.Equal(t, "Asia/Dubai", settings["timezone"])
	assertDecimal(t, "50", settings["delivery_fee"])

	w, settings = s.do(t, http.MethodPatch, "/api/settings/1", map[string]any{"delivery_fee": "75"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertDecimal(t, "75", settings["delivery_fee"])
	assert.Equal(t, "AED", settings["currency"])

	w, settings = s.do(t, http.MethodPatch, "/api/settings", map[string]any{"timezone": "Mars/Olympus"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, settings["details"], "timezone")

	w, body := s.do(t, http.MethodPost, "/api/settings", map[string]any{"currency": "USD"})
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", body["error"])

	w, _ = s.do(t, http.MethodDelete, "/api/settings/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, settings = s.do(t, http.MethodGet, "/api/settings/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertDecimal(t, "75", settings["delivery_fee"])
}

func TestUserEndpoints(t *testing.T) {
	s := newTestServer(t)

	w, body := s.do(t, http.MethodPost, "/api/users", map[string]any{"username": "fatima"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, body["details"], "password")

	w, user := s.do(t, http.MethodPost, "/api/users", map[string]any{
		"username":   "fatima",
		"password":   "s3cret-pass",
		"first_name": "fatima",
		"last_name":  "Hassan",
		"role":       "MANAGER",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "F", user["avatar"])
	assert.Equal(t, "fatima Hassan", user["full_name"])
	assert.Equal(t, "Never", user["last_login_display"])
	assert.Equal(t, "ACTIVE", user["status"])
	assert.NotContains(t, user, "password")
	path := "/api/users/" + itoa(id(t, user))

	w, user = s.do(t, http.MethodPatch, path+"/toggle_status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INACTIVE", user["status"])
	assert.Equal(t, false, user["is_active"])

	w, user = s.do(t, http.MethodPatch, path, map[string]any{"first_name": "Zainab", "reset_avatar": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Z", user["avatar"])

	w, body = s.do(t, http.MethodGet, "/api/users/by_role", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Role parameter required", body["error"])

	req := httptest.NewRequest(http.MethodGet, "/api/users/by_role?role=manager", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "fatima", users[0]["username"])
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w, body := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])

	r := gin.New()
	r.GET("/healthz", Health(map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
