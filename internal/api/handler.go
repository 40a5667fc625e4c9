package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"juicedash/internal/models"
	"juicedash/internal/service"
	"juicedash/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProductCatalog is the slice of the store the product endpoints use.
type ProductCatalog interface {
	GetAvailableProducts(ctx context.Context) ([]models.Product, error)
	GetAvailableProductByID(ctx context.Context, id string) (*models.Product, error)
}

// Handler contains HTTP handlers
type Handler struct {
	orderService *service.OrderService
	recService   *service.RecommendationService
	catalog      ProductCatalog
}

// NewHandler creates a new HTTP handler
func NewHandler(orderService *service.OrderService, recService *service.RecommendationService, catalog ProductCatalog) *Handler {
	return &Handler{
		orderService: orderService,
		recService:   recService,
		catalog:      catalog,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		v1.POST("/recommendations", h.recommend)

		v1.GET("/delivery/fee", h.deliveryFee)

		v1.POST("/orders", h.createOrder)
		v1.GET("/orders", h.listOrders)
		v1.GET("/orders/:id", h.getOrder)
		v1.GET("/orders/:id/track", h.trackOrder)
		v1.POST("/orders/:id/cancel", h.cancelOrder)
		v1.POST("/orders/:id/reorder", h.reorder)
	}
}

// RecommendationRequest is the caller-facing recommendation payload.
type RecommendationRequest struct {
	Symptoms  []string `json:"symptoms" binding:"required,min=1"`
	Allergies []string `json:"allergies,omitempty"`
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.GetAvailableProducts(c.Request.Context())
	if err != nil {
		respondError(c, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load products", err))
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"products": products})
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetAvailableProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, models.WrapDomainError(models.ErrCodeStoreUnavailable, "failed to load product", err))
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "product not found",
			"code":    models.ErrCodeProductUnavailable,
		})
		return
	}
	respondOK(c, http.StatusOK, "", product)
}

func (h *Handler) recommend(c *gin.Context) {
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "symptoms must be a non-empty list",
			"code":    models.ErrCodeInvalidInput,
		})
		return
	}

	report, err := h.recService.Recommend(c.Request.Context(), req.Symptoms, req.Allergies)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, report.Message, report)
}

func (h *Handler) deliveryFee(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "lat and lng must be numeric query parameters",
			"code":    models.ErrCodeInvalidInput,
		})
		return
	}

	quote, err := h.orderService.DeliveryQuote(c.Request.Context(), lat, lng)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, quote.Message, quote)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "invalid order payload: " + err.Error(),
			"code":    models.ErrCodeInvalidInput,
		})
		return
	}

	details, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Order placed", details)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", gin.H{"orders": orders})
}

func (h *Handler) getOrder(c *gin.Context) {
	details, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "", details)
}

func (h *Handler) trackOrder(c *gin.Context) {
	tracking, err := h.orderService.TrackOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, tracking.StatusMessage, tracking)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, "Order cancelled", order)
}

func (h *Handler) reorder(c *gin.Context) {
	var overrides service.ReorderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&overrides); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "invalid reorder payload: " + err.Error(),
				"code":    models.ErrCodeInvalidInput,
			})
			return
		}
	}

	details, err := h.orderService.Reorder(c.Request.Context(), c.Param("id"), &overrides)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, "Order placed", details)
}

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, err error) {
	var domainErr *models.DomainError
	if !errors.As(err, &domainErr) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal error",
			"code":    models.ErrCodeStoreUnavailable,
		})
		return
	}

	c.JSON(statusForCode(domainErr.Code), gin.H{
		"success": false,
		"error":   domainErr.Message,
		"code":    domainErr.Code,
	})
}

func statusForCode(code string) int {
	switch code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case models.ErrCodeNoOutletAvailable, models.ErrCodeProductUnavailable:
		return http.StatusUnprocessableEntity
	case models.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case models.ErrCodeInvalidStateTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
