package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Total number of orders created",
	})

	OrdersFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_failed_total",
		Help: "Total number of failed order creations",
	}, []string{"reason"})

	OrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_cancelled_total",
		Help: "Total number of cancelled orders",
	})

	OrderRollbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_rollbacks_total",
		Help: "Total number of compensating order-header deletions",
	})

	RecommendationsServedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendations_served_total",
		Help: "Total number of recommendation requests served",
	})

	RecommendationFallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_fallback_total",
		Help: "Total number of recommendation requests answered by the random fallback",
	})

	DeliveryQuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "delivery_quotes_total",
		Help: "Total number of delivery-fee quotes",
	}, []string{"available"})

	OrderPipelineLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_pipeline_latency_seconds",
		Help:    "Latency of the order pricing and assembly pipeline",
		Buckets: prometheus.DefBuckets,
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
