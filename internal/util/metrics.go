package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_queries_total",
		Help: "Total number of catalog view queries",
	}, []string{"view"})

	CatalogCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Catalog cache lookups by outcome",
	}, []string{"outcome"})

	ProductMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_mutations_total",
		Help: "Total number of product create/update/delete/seed operations",
	}, []string{"op"})

	CartOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Total number of cart mutations",
	}, []string{"op"})

	CartPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Total number of failed cart persistence writes",
	})

	CartRehydrateFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cart_rehydrate_failures_total",
		Help: "Total number of carts that failed to rehydrate and restarted empty",
	})

	CheckoutsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "checkouts_created_total",
		Help: "Total number of checkouts created",
	})

	CheckoutsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_failed_total",
		Help: "Total number of failed checkouts",
	}, []string{"reason"})

	PaymentWebhooksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhooks_total",
		Help: "Total number of payment webhook notifications received",
	}, []string{"type"})

	PaymentsSettledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_settled_total",
		Help: "Total number of payments settled by the worker",
	}, []string{"status"})

	ImageUploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Total number of product images uploaded",
	})

	PreferenceCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_preference_latency_seconds",
		Help:    "Latency of payment preference creation at the provider",
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
