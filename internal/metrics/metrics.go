package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LoginsTotal counts login attempts by result (success, failure).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// RegistrationsTotal counts signups by result (success, duplicate, invalid, error).
	RegistrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Total number of registration attempts by result",
		},
		[]string{"result"},
	)

	// IssuesSubmittedTotal counts accepted issue reports by category.
	IssuesSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "issues_submitted_total",
			Help: "Total number of issues submitted by category",
		},
		[]string{"category"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, LoginsTotal, RegistrationsTotal, IssuesSubmittedTotal)
	})
}

// knownPaths bounds label cardinality; anything else is reported as "other".
var knownPaths = map[string]bool{
	"/": true, "/login": true, "/signup": true, "/logout": true, "/menu": true,
	"/issues": true, "/issues/new": true, "/health": true,
}

// NormalizePath maps unknown paths to "other".
func NormalizePath(path string) string {
	if knownPaths[path] {
		return path
	}
	return "other"
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

func IncLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

func IncRegistration(result string) {
	RegistrationsTotal.WithLabelValues(result).Inc()
}

func IncIssueSubmitted(category string) {
	IssuesSubmittedTotal.WithLabelValues(category).Inc()
}
