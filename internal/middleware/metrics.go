package middleware

import (
	"strconv"
	"time"

	"github.com/deppfellow/hackreg/internal/metrics"
	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request counts and latency in Prometheus.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Instrument labels by route template, not raw URL, to keep cardinality
// bounded. Unmatched routes are recorded as "unmatched".
func (mm *MetricsMiddleware) Instrument() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if mm.metrics == nil {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := statusFromError(c.Response().Status, err)

			mm.metrics.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			mm.metrics.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
