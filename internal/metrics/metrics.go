package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CartOperations counts cart mutations by operation (add_item,
// update_quantity, remove_item, clear).
var CartOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Total cart mutations by operation.",
	},
	[]string{"operation"},
)

// ActiveCarts tracks the number of live session carts.
var ActiveCarts = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "cart_active_carts",
		Help: "Number of live session carts.",
	},
)

// QuoteDuration observes pricing quote computation latency.
var QuoteDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "cart_quote_duration_seconds",
		Help:    "Pricing quote computation latency.",
		Buckets: prometheus.DefBuckets,
	},
)

// HTTPRequests counts HTTP requests by method, path and status.
var HTTPRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cart_http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	},
	[]string{"method", "route", "status"},
)
