package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DevicesActive = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "cabs", Name: "devices_active", Help: "Number of registered devices"})
	SessionsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabs", Name: "sessions_started_total", Help: "OTP verifications that started a session"})
	OTPFailures   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabs", Name: "otp_failures_total", Help: "Rejected OTP codes"})
	RidesTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabs", Name: "rides_completed_total", Help: "Completed rides"})
	RideRevenue   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabs", Name: "ride_revenue_rupees_total", Help: "Sum of completed ride prices"})
	Logouts       = promauto.NewCounter(prometheus.CounterOpts{Namespace: "cabs", Name: "logouts_total", Help: "Confirmed logouts"})

	Navigations = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabs", Name: "navigations_total", Help: "Screen navigations by target"},
		[]string{"screen"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "cabs", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cabs",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
