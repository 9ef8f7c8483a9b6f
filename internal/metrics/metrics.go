package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	BreakerState prometheus.Gauge
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orderservice",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "orderservice",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	breakerState := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "orderservice",
		Subsystem: service,
		Name:      "user_breaker_state",
		Help:      "User directory circuit breaker state (0 closed, 1 open, 2 half-open).",
	})

	prometheus.MustRegister(requests, latency, breakerState)
	return &ServerMetrics{Requests: requests, LatencyMS: latency, BreakerState: breakerState}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
