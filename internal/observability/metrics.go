package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Security pipeline metrics
	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Total number of failed authentication attempts",
		},
		[]string{"reason"},
	)

	AuthzFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authz_failures_total",
			Help: "Total number of role or ownership check rejections",
		},
		[]string{"role"},
	)

	CSRFFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "csrf_failures_total",
			Help: "Total number of rejected CSRF validations",
		},
		[]string{"reason"},
	)

	RateLimitRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"policy"},
	)

	SecurityRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "security_rejections_total",
			Help: "Total number of requests rejected by the input security screen",
		},
		[]string{"kind"},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"operation", "table"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_open",
			Help: "Number of open database connections",
		},
	)
)
