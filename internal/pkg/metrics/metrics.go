package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "classifieds"

// Metrics holds the Prometheus collectors for the API process.
type Metrics struct {
	RequestCounter       *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	ListingTransitions   *prometheus.CounterVec
	AuditWriteFailures   prometheus.Counter
	CatalogQueryFailures prometheus.Counter
	ReportsCreated       *prometheus.CounterVec
}

// New registers collectors on reg. Passing a fresh prometheus.NewRegistry()
// keeps tests isolated from the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ListingTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listing_transitions_total",
				Help:      "Listing lifecycle transitions by action",
			},
			[]string{"action"},
		),
		AuditWriteFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Admin action log rows that could not be written",
		}),
		CatalogQueryFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_query_failures_total",
			Help:      "Catalog queries answered with an empty page after a store error",
		}),
		ReportsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_created_total",
				Help:      "Reports filed by visitors",
			},
			[]string{"reason"},
		),
	}
}

// Noop returns collectors bound to a throwaway registry.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}

// GinMiddleware records request count and latency per route template.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
