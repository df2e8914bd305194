// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerMetrics counts HTTP requests and tracks their latency, labeled by
// route template and status code.
type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewServerMetrics registers the HTTP metrics on reg. Production passes
// prometheus.DefaultRegisterer; tests pass their own registry so repeated
// registration cannot collide.
func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// OrderMetrics counts placement outcomes: "placed" plus one label per
// rejection reason, so sold-out noise is visible next to real failures.
type OrderMetrics struct {
	Placements *prometheus.CounterVec
}

func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "order_placements_total",
		Help:      "Order placement attempts by outcome.",
	}, []string{"result"})

	reg.MustRegister(placements)
	return &OrderMetrics{Placements: placements}
}

// Observe records one placement attempt.
func (m *OrderMetrics) Observe(result string) {
	m.Placements.WithLabelValues(result).Inc()
}

// Handler serves the default registry scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
