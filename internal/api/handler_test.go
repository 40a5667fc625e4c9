package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"juicedash/internal/models"
	"juicedash/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	products []models.Product
}

func (s *stubCatalog) GetAvailableProducts(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) GetAvailableProductByID(ctx context.Context, id string) (*models.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, nil
}

func (s *stubCatalog) GetSymptomMappings(ctx context.Context) ([]models.SymptomMapping, error) {
	return []models.SymptomMapping{{
		Symptom:                "fatigue",
		RecommendedIngredients: []string{"Ginger"},
	}}, nil
}

type stubResolver struct {
	nearest *models.NearestOutlet
}

func (s *stubResolver) NearestOutlet(ctx context.Context, lat, lng float64) (*models.NearestOutlet, error) {
	return s.nearest, nil
}

type noopOrderStore struct{}

func (noopOrderStore) GetAvailableProductByID(ctx context.Context, id string) (*models.Product, error) {
	return nil, nil
}
func (noopOrderStore) CreateOrder(ctx context.Context, order *models.Order) error      { return nil }
func (noopOrderStore) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	return nil
}
func (noopOrderStore) DeleteOrder(ctx context.Context, orderID string) error { return nil }
func (noopOrderStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return nil, nil
}
func (noopOrderStore) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	return nil, nil
}
func (noopOrderStore) GetOrderDetails(ctx context.Context, orderID string) (*models.OrderDetails, error) {
	return nil, models.ErrOrderNotFound
}
func (noopOrderStore) GetOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	return nil, nil
}
func (noopOrderStore) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	return nil
}

func testRouter(catalog *stubCatalog, resolver *stubResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)

	orderService := service.NewOrderService(noopOrderStore{}, resolver, nil, nil, service.DefaultTariff)
	recService := service.NewRecommendationService(catalog, nil)

	router := gin.New()
	NewHandler(orderService, recService, catalog).SetupRoutes(router)
	return router
}

func defaultCatalog() *stubCatalog {
	return &stubCatalog{products: []models.Product{
		{ID: "green-detox", Name: "Green Detox", PricePerLitre: 15000, Ingredients: []string{"Ginger"}, IsAvailable: true},
	}}
}

func TestRecommendRejectsEmptySymptoms(t *testing.T) {
	router := testRouter(defaultCatalog(), &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", strings.NewReader(`{"symptoms": []}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, models.ErrCodeInvalidInput, body["code"])
}

func TestRecommendReturnsReport(t *testing.T) {
	router := testRouter(defaultCatalog(), &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations",
		strings.NewReader(`{"symptoms": ["fatigue"], "allergies": ["milk"]}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Recommendations       []json.RawMessage `json:"recommendations"`
			TotalProductsAnalyzed int               `json:"total_products_analyzed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Data.TotalProductsAnalyzed)
	assert.LessOrEqual(t, len(body.Data.Recommendations), 3)
}

func TestDeliveryFeeValidatesCoordinates(t *testing.T) {
	router := testRouter(defaultCatalog(), &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/delivery/fee?lat=abc&lng=106.8", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeliveryFeeQuote(t *testing.T) {
	resolver := &stubResolver{nearest: &models.NearestOutlet{
		OutletID:   "outlet-1",
		Name:       "Central Outlet",
		DistanceKm: 2.0,
	}}
	router := testRouter(defaultCatalog(), resolver)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/delivery/fee?lat=-6.2&lng=106.8", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.DeliveryQuote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.DeliveryAvailable)
	assert.Equal(t, 6000.0, body.Data.DeliveryFee)
	assert.Equal(t, 50.0, body.Data.EstimatedDeliveryMinutes)
}

func TestGetUnknownOrderIs404(t *testing.T) {
	router := testRouter(defaultCatalog(), &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/nope", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListProducts(t *testing.T) {
	router := testRouter(defaultCatalog(), &stubResolver{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Products []models.Product `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Products, 1)
	assert.Equal(t, "green-detox", body.Data.Products[0].ID)
}
