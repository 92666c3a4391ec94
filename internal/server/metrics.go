// ABOUTME: Prometheus metrics for the HTTP API.
// ABOUTME: Registered once per process; exposed at /metrics.
package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the server's Prometheus collectors.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	MeasurementsCreated prometheus.Counter
	ExtractionsTotal    *prometheus.CounterVec
	EvaluationsTotal    *prometheus.CounterVec
}

// NewMetrics returns the process-wide metrics, registering them on first use.
//
// Metrics:
//   - bodycomp_http_requests_total{method,route,status}
//   - bodycomp_http_request_duration_seconds{method,route}
//   - bodycomp_measurements_created_total
//   - bodycomp_extractions_total{result}
//   - bodycomp_evaluations_total{tier}
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bodycomp_http_requests_total",
					Help: "Total HTTP requests by method, route, and status",
				},
				[]string{"method", "route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "bodycomp_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
				},
				[]string{"method", "route"},
			),
			MeasurementsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "bodycomp_measurements_created_total",
				Help: "Total measurements stored through the API",
			}),
			ExtractionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bodycomp_extractions_total",
					Help: "Report extractions by result",
				},
				[]string{"result"}, // "ok", "malformed", "error"
			),
			EvaluationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "bodycomp_evaluations_total",
					Help: "Evaluations served by overall tier",
				},
				[]string{"tier"},
			),
		}
	})
	return globalMetrics
}

// Middleware records request counts and durations by route template.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			m.RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
