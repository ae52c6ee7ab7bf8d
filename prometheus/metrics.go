package prometheus

import (
	"sync"
	"time"

	"property-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Responses by status class (2xx, 4xx, 5xx)
	HttpStatusCategoryTotal *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Property metrics
	PropertyOperationsCounter *prometheus.CounterVec

	// Catalog cache metrics
	CatalogCacheLookups *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics registers the collectors under the configured prefix. Calling it
// more than once is a no-op. Until it runs the record helpers below do nothing,
// which keeps packages usable in tests without a registry.
func InitMetrics(cfg *config.Config) {
	initOnce.Do(func() {
		prefix := cfg.Metrics.Prefix

		HttpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		)

		HttpRequestDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		)

		HttpStatusCategoryTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_status_category_total",
				Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
			},
			[]string{"category", "method", "path"},
		)

		AuthAttemptsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts",
			},
		)

		AuthErrorsCounter = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_auth_errors_total",
				Help: "Total number of authentication errors",
			},
		)

		DbOperationDuration = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		)

		PropertyOperationsCounter = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_property_operations_total",
				Help: "Total number of property operations",
			},
			[]string{"operation", "outcome"},
		)

		CatalogCacheLookups = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_cache_lookups_total",
				Help: "Catalog name lookups by catalog and result (hit, miss)",
			},
			[]string{"catalog", "result"},
		)
	})
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordPropertyOperation counts a property operation by outcome ("success" or an error code)
func RecordPropertyOperation(operation, outcome string) {
	if PropertyOperationsCounter == nil {
		return
	}
	PropertyOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordCatalogLookup counts a catalog cache hit or miss
func RecordCatalogLookup(catalog string, hit bool) {
	if CatalogCacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	CatalogCacheLookups.WithLabelValues(catalog, result).Inc()
}

// RecordHTTPRequest observes one served request
func RecordHTTPRequest(method, path, status string, code int, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if category := statusCategory(code); category != "" {
		HttpStatusCategoryTotal.WithLabelValues(category, method, path).Inc()
	}
}

// RecordAuthAttempt counts a token check and, when it failed, an auth error
func RecordAuthAttempt(ok bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if !ok {
		AuthErrorsCounter.Inc()
	}
}

func statusCategory(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	}
	return ""
}
