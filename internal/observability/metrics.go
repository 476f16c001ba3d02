package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	CacheEvictionsTotal *prometheus.CounterVec
	CacheEntries        *prometheus.GaugeVec

	// Record store metrics
	RecordFetchDuration    *prometheus.HistogramVec
	RecordFetchErrorsTotal *prometheus.CounterVec

	// Analytics metrics
	CalculatorDuration *prometheus.HistogramVec
	RateLimitedTotal   prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetdash_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetdash_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetdash_cache_hits_total",
				Help: "Total number of result cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetdash_cache_misses_total",
				Help: "Total number of result cache misses",
			},
			[]string{"cache"},
		),
		CacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetdash_cache_evictions_total",
				Help: "Total number of result cache evictions",
			},
			[]string{"cache", "reason"},
		),
		CacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetdash_cache_entries",
				Help: "Current number of stored cache entries",
			},
			[]string{"cache"},
		),

		RecordFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetdash_record_fetch_duration_seconds",
				Help:    "Record store list duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"kind"},
		),
		RecordFetchErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetdash_record_fetch_errors_total",
				Help: "Total number of failed record store lists",
			},
			[]string{"kind"},
		),

		CalculatorDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "assetdash_calculator_duration_seconds",
				Help:    "Analytics calculator duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"calculator"},
		),
		RateLimitedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "assetdash_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
		m.CacheEntries,
		m.RecordFetchDuration,
		m.RecordFetchErrorsTotal,
		m.CalculatorDuration,
		m.RateLimitedTotal,
	)

	return m
}

// ObserveCalculator records how long one calculator took
func (m *Metrics) ObserveCalculator(name string, start time.Time) {
	if m == nil {
		return
	}
	m.CalculatorDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// Requests are labelled by route template to keep cardinality bounded.
func HTTPMetricsMiddleware(metrics *Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler serves the registry in the Prometheus exposition format
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
