package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agendia_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "agendia_register_total",
			Help: "Total number of owner registrations",
		},
	)

	// Company operation counter
	CompanyOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendia_company_operations_total",
			Help: "Total number of company operations",
		},
		[]string{"operation"}, // "create", "switch", "deactivate", "restore", "delete", ...
	)

	// Gate denial counter, labeled by the ability that was required
	GateDenialCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendia_gate_denials_total",
			Help: "Total number of requests denied by the ability gate",
		},
		[]string{"ability", "reason"}, // reason: "unauthenticated", "no_company", "forbidden"
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agendia_auth_errors_total",
			Help: "Total number of authentication/authorization errors",
		},
		[]string{"type"},
	)

	// DB operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agendia_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "query", "insert", "update", "delete"
	)
)

func init() {
	prometheus.MustRegister(
		LoginCounter,
		RegisterCounter,
		CompanyOperationCounter,
		GateDenialCounter,
		AuthErrorCounter,
		DBOperationDuration,
	)
}

// RecordAuthError increments the error counter for the given error type
func RecordAuthError(errorType string) {
	AuthErrorCounter.WithLabelValues(errorType).Inc()
}

// RecordCompanyOperation increments the company operation counter
func RecordCompanyOperation(operation string) {
	CompanyOperationCounter.WithLabelValues(operation).Inc()
}

// RecordGateDenial increments the gate denial counter
func RecordGateDenial(ability, reason string) {
	GateDenialCounter.WithLabelValues(ability, reason).Inc()
}

// TrackDBOperation returns a function that records the duration of a
// database operation when called:
//
//	defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operation string) func(time.Time) {
	return func(start time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
