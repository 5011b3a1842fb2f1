// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authOutcomes counts login, registration and confirmation results.
	authOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "morpion_auth_outcomes_total",
		Help: "Total number of authentication flow outcomes",
	}, []string{"operation", "outcome"})

	// signupNotifications counts signup notification deliveries by result.
	signupNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "morpion_signup_notifications_total",
		Help: "Total number of signup notifications dispatched",
	}, []string{"result"})

	// httpRequests counts served HTTP requests.
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "morpion_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "status"})

	// httpDuration tracks HTTP request latency.
	httpDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "morpion_http_request_duration_seconds",
		Help:    "Histogram of HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// httpPanics counts handler panics caught by the recovery middleware.
	httpPanics = promauto.NewCounter(prometheus.CounterOpts{
		Name: "morpion_http_panics_total",
		Help: "Total number of recovered handler panics",
	})
)

// RecordAuthOutcome records the outcome of an authentication operation
func RecordAuthOutcome(operation, outcome string) {
	authOutcomes.WithLabelValues(operation, outcome).Inc()
}

// RecordSignupNotification records whether a signup notification was delivered
func RecordSignupNotification(err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	signupNotifications.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(method string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	httpDuration.Observe(duration.Seconds())
}

// RecordPanic records a recovered handler panic
func RecordPanic() {
	httpPanics.Inc()
}
